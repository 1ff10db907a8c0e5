// Package audio provides the sinks receiving the APU sample blocks.
package audio

import (
	"nesapu/hw/apu"
)

var (
	_ apu.Sink = (*Null)(nil)
	_ apu.Sink = (*Recorder)(nil)
	_ apu.Sink = (*WAV)(nil)
	_ apu.Sink = (*LowPass)(nil)
)

// Null discards all samples.
type Null struct {
	Rate int
}

func (n Null) SampleRate() int { return n.Rate }
func (Null) Play([]int16) {}

// Recorder keeps all samples in memory.
type Recorder struct {
	Rate    int
	Samples []int16
	Blocks  int
}

func NewRecorder(rate int) *Recorder {
	return &Recorder{Rate: rate}
}

func (r *Recorder) SampleRate() int { return r.Rate }

func (r *Recorder) Play(samples []int16) {
	r.Samples = append(r.Samples, samples...)
	r.Blocks++
}

// Peak returns the highest absolute sample value recorded.
func (r *Recorder) Peak() int {
	return Peak(r.Samples)
}

// Peak returns the highest absolute value in samples.
func Peak(samples []int16) int {
	var peak int
	for _, s := range samples {
		peak = max(peak, abs(int(s)))
	}
	return peak
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
