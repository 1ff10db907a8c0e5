package audio

import (
	"math"

	"nesapu/hw/apu"
)

// LowPass applies a first-order RC low-pass filter to the samples before
// forwarding them to another sink. Filter state persists across blocks.
type LowPass struct {
	sink  apu.Sink
	alpha float64
	prev  float64
	buf   []int16
}

// NewLowPass returns a filter with the given cutoff frequency, in Hz, in
// front of sink.
func NewLowPass(sink apu.Sink, cutoff float64) *LowPass {
	rc := 1 / (2 * math.Pi * cutoff)
	dt := 1 / float64(sink.SampleRate())
	return &LowPass{
		sink:  sink,
		alpha: dt / (rc + dt),
	}
}

func (lp *LowPass) SampleRate() int { return lp.sink.SampleRate() }

func (lp *LowPass) Play(samples []int16) {
	lp.buf = lp.buf[:0]
	for _, s := range samples {
		lp.prev = lp.alpha*float64(s) + (1-lp.alpha)*lp.prev
		lp.buf = append(lp.buf, int16(math.Round(lp.prev)))
	}
	lp.sink.Play(lp.buf)
}
