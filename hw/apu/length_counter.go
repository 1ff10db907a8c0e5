package apu

// lengthCounter automatically silences a channel after a programmable
// duration.
type lengthCounter struct {
	enabled bool
	halt    bool
	counter uint8
}

// load reloads the counter from the length table. Ignored while the channel is
// disabled through $4015.
func (lc *lengthCounter) load(idx uint8) {
	if lc.enabled {
		lc.counter = lengthLUT[idx&0x1F]
	}
}

func (lc *lengthCounter) tick() {
	if lc.counter > 0 && !lc.halt {
		lc.counter--
	}
}

func (lc *lengthCounter) setEnabled(enabled bool) {
	if !enabled {
		lc.counter = 0
	}
	lc.enabled = enabled
}

func (lc *lengthCounter) active() bool {
	return lc.counter > 0
}
