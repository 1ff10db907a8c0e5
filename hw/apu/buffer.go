package apu

import (
	"github.com/arl/blip"

	"nesapu/hw/hwdefs"
)

// Number of output blocks per second: one block per video frame.
const blocksPerSecond = 60

// SampleBuffer resamples CPU clocked amplitude deltas into blocks of output
// samples at the sink rate.
type SampleBuffer struct {
	buf        *blip.Buffer
	blockSize  int
	sampleRate int
	out        []int16
}

// NewSampleBuffer returns a buffer producing blocks of sampleRate/60
// samples.
func NewSampleBuffer(sampleRate int) *SampleBuffer {
	if sampleRate <= 0 {
		panic("apu: sample rate must be positive")
	}

	block := min(max(sampleRate/blocksPerSecond, 1), blip.MaxFrame)
	sb := &SampleBuffer{
		buf:        blip.NewBuffer(block * 2),
		blockSize:  block,
		sampleRate: sampleRate,
		out:        make([]int16, block*2),
	}
	sb.buf.SetRates(float64(hwdefs.NTSCClockRate), float64(sampleRate))
	return sb
}

// BlockSize returns the number of samples in a block.
func (sb *SampleBuffer) BlockSize() int {
	return sb.blockSize
}

// SampleRate returns the output sample rate.
func (sb *SampleBuffer) SampleRate() int {
	return sb.sampleRate
}

// ClocksNeeded returns the number of CPU cycles after which a full block
// is available.
func (sb *SampleBuffer) ClocksNeeded() uint32 {
	missing := max(sb.blockSize-sb.buf.SamplesAvailable(), 0)
	return uint32(sb.buf.ClocksNeeded(missing))
}

// AddDelta adds an amplitude change at the given block-relative cycle.
func (sb *SampleBuffer) AddDelta(time uint32, delta int32) {
	sb.buf.AddDelta(uint64(time), delta)
}

// EndFrame ends the current block after cycles CPU cycles, making the
// samples before it available for reading.
func (sb *SampleBuffer) EndFrame(cycles uint32) {
	sb.buf.EndFrame(int(cycles))
}

// Read drains all available samples. The returned slice is reused by the
// next call to Read.
func (sb *SampleBuffer) Read() []int16 {
	n := sb.buf.SamplesAvailable()
	if n > len(sb.out) {
		sb.out = make([]int16, n)
	}
	n = sb.buf.ReadSamples(sb.out, n, blip.Mono)
	return sb.out[:n]
}
