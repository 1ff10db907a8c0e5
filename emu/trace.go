package emu

import (
	"io"

	"github.com/go-faster/jx"

	"nesapu/hw/apu"
	"nesapu/hw/audio"
	"nesapu/hw/hwdefs"
)

var eventNames = [...]string{
	apu.EnvelopeClock: "quarter",
	apu.LengthClock:   "half",
	apu.FrameIRQ:      "frame_irq",
	apu.ModeWrite:     "mode",
	apu.Transfer:      "transfer",
}

// Tracer writes the console and APU events as JSON lines.
type Tracer struct {
	w   io.Writer
	enc jx.Encoder
	err error

	blockCyc uint64
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Attach registers t as the observer of c and of its APU.
func (t *Tracer) Attach(c *Console) {
	c.SetObserver(t)
	c.APU.SetObserver(t.Event)
}

// Err returns the first write error.
func (t *Tracer) Err() error { return t.err }

// Event records a frame sequencer event. Transfers are recorded by the sink
// returned by Sink, along with the block content.
func (t *Tracer) Event(cyc uint64, ev apu.Event) {
	if ev == apu.Transfer {
		t.blockCyc = cyc
		return
	}

	t.begin(cyc, eventNames[ev])
	t.end()
}

func (t *Tracer) IRQ(cyc uint64, src hwdefs.IRQSource) {
	t.begin(cyc, "irq")
	t.enc.FieldStart("src")
	t.enc.Str(src.String())
	t.end()
}

func (t *Tracer) StatusRead(cyc uint64, status uint8) {
	t.begin(cyc, "status")
	t.enc.FieldStart("val")
	t.enc.UInt8(status)
	t.end()
}

// Sink returns a sink recording each block before passing it to next.
func (t *Tracer) Sink(next apu.Sink) apu.Sink {
	return &traceSink{t: t, next: next}
}

type traceSink struct {
	t    *Tracer
	next apu.Sink
}

func (ts *traceSink) SampleRate() int { return ts.next.SampleRate() }

func (ts *traceSink) Play(samples []int16) {
	t := ts.t
	t.begin(t.blockCyc, eventNames[apu.Transfer])
	t.enc.FieldStart("samples")
	t.enc.Int(len(samples))
	t.enc.FieldStart("peak")
	t.enc.Int(audio.Peak(samples))
	t.end()

	ts.next.Play(samples)
}

func (t *Tracer) begin(cyc uint64, ev string) {
	t.enc.Reset()
	t.enc.ObjStart()
	t.enc.FieldStart("cyc")
	t.enc.UInt64(cyc)
	t.enc.FieldStart("ev")
	t.enc.Str(ev)
}

func (t *Tracer) end() {
	t.enc.ObjEnd()
	if t.err != nil {
		return
	}

	buf := append(t.enc.Bytes(), '\n')
	if _, err := t.w.Write(buf); err != nil {
		t.err = err
	}
}
