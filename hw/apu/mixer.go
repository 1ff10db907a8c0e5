package apu

import (
	"slices"

	"nesapu/hw/hwdefs"
)

// Mixer combines the channel output levels with the non-linear NES mixing
// curves and feeds the result into the sample buffer.
//
// Channels are played one after another over the same cycle window, so their
// level changes are recorded per timestamp and only mixed, in time order,
// when the block ends.
type Mixer struct {
	buf *SampleBuffer

	volumes [hwdefs.NumAudioChannels]float64
	master  float64

	timestamps []uint32
	chanoutput [hwdefs.NumAudioChannels][]int16
	curOutput  [hwdefs.NumAudioChannels]int16
	prevOutput int16
}

func newMixer(buf *SampleBuffer) *Mixer {
	m := &Mixer{
		buf:    buf,
		master: 1.0,
	}
	size := int(buf.ClocksNeeded()) + 64
	for i := range m.chanoutput {
		m.chanoutput[i] = make([]int16, size)
		m.volumes[i] = 1.0
	}
	return m
}

// SetVolume sets the gain of a channel, 1 being the hardware level.
func (m *Mixer) SetVolume(ch Channel, vol float64) {
	m.volumes[ch] = vol
}

// SetMasterVolume sets the gain applied to the mixed output.
func (m *Mixer) SetMasterVolume(vol float64) {
	m.master = vol
}

func (m *Mixer) addDelta(ch Channel, time uint32, delta int16) {
	if delta == 0 {
		return
	}
	if int(time) >= len(m.chanoutput[ch]) {
		m.grow(int(time) + 1)
	}
	m.timestamps = append(m.timestamps, time)
	m.chanoutput[ch][time] += delta
}

func (m *Mixer) grow(size int) {
	for i := range m.chanoutput {
		m.chanoutput[i] = slices.Grow(m.chanoutput[i], size-len(m.chanoutput[i]))[:size]
	}
}

func (m *Mixer) channelOutput(ch Channel) float64 {
	return float64(m.curOutput[ch]) * m.volumes[ch]
}

func (m *Mixer) outputVolume() int16 {
	squareOutput := m.channelOutput(Square1) + m.channelOutput(Square2)
	tndOutput := m.channelOutput(DMC) +
		2.7516713261*m.channelOutput(Triangle) +
		1.8493587125*m.channelOutput(Noise)

	squareVolume := (95.88 * 5000.0) / (8128.0/squareOutput + 100.0)
	tndVolume := (159.79 * 5000.0) / (22638.0/tndOutput + 100.0)

	out := (squareVolume + tndVolume) * 4 * m.master
	return int16(min(max(out, -32768), 32767))
}

// endFrame mixes the block's level changes in time order and ends the sample
// buffer frame at cycles.
func (m *Mixer) endFrame(cycles uint32) {
	// Remove duplicates.
	slices.Sort(m.timestamps)
	m.timestamps = slices.Compact(m.timestamps)

	for _, stamp := range m.timestamps {
		for ch := range m.chanoutput {
			m.curOutput[ch] += m.chanoutput[ch][stamp]
			m.chanoutput[ch][stamp] = 0
		}

		out := m.outputVolume()
		m.buf.AddDelta(stamp, int32(out)-int32(m.prevOutput))
		m.prevOutput = out
	}

	m.buf.EndFrame(cycles)
	m.timestamps = m.timestamps[:0]
}
