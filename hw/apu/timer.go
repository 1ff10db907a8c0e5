package apu

// timer is a channel divider clocked by the CPU clock. It keeps no notion of
// absolute time: callers advance it over block-relative cycle windows.
type timer struct {
	counter    uint16
	period     uint16
	lastOutput int8

	channel Channel
}

// advance runs the timer from *from toward to. It returns true each time the
// timer reloads, with *from set to the cycle at which it happened; it returns
// false once to is reached without reload.
func (t *timer) advance(from *uint32, to uint32) bool {
	cycles := to - *from
	if cycles > uint32(t.counter) {
		*from += uint32(t.counter) + 1
		t.counter = t.period
		return true
	}

	t.counter -= uint16(cycles)
	*from = to
	return false
}

// addOutput sends the output level change, if any, to the mixer.
func (t *timer) addOutput(m *Mixer, time uint32, output int8) {
	if output != t.lastOutput {
		m.addDelta(t.channel, time, int16(output-t.lastOutput))
		t.lastOutput = output
	}
}
