package apu

//go:generate go tool stringer -type=Channel,Event -output=types_string.go

type Channel uint8

const (
	Square1 Channel = iota
	Square2
	Triangle
	Noise
	DMC
)

// Event is a frame-sequencer event reported to the observer.
type Event uint8

const (
	EnvelopeClock Event = iota // quarter frame: envelopes and linear counter
	LengthClock                // half frame: length counters and sweep units
	FrameIRQ                   // frame interrupt raised
	ModeWrite                  // $4017 value applied
	Transfer                   // sample block handed to the sink
)

// A Sink receives finished blocks of signed 16-bit mono samples. Play is
// called synchronously and must not retain samples after it returns.
type Sink interface {
	SampleRate() int
	Play(samples []int16)
}
