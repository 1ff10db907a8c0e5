package emu

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"nesapu/hw/audio"
)

type traceLine struct {
	Cyc     uint64
	Ev      string
	Src     string
	Val     int
	Samples int
}

func parseTrace(t *testing.T, data []byte) []traceLine {
	t.Helper()

	var lines []traceLine
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var tl traceLine
		err := jx.DecodeBytes(sc.Bytes()).Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "cyc":
				tl.Cyc, err = d.UInt64()
			case "ev":
				tl.Ev, err = d.Str()
			case "src":
				tl.Src, err = d.Str()
			case "val":
				tl.Val, err = d.Int()
			case "samples":
				tl.Samples, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		})
		if err != nil {
			t.Fatalf("invalid trace line %q: %v", sc.Text(), err)
		}
		lines = append(lines, tl)
	}
	return lines
}

func TestTracer(t *testing.T) {
	s, err := LoadScript("testdata/irq.toml")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	tr := NewTracer(&buf)
	c := NewConsole(tr.Sink(audio.Null{Rate: 44100}))
	tr.Attach(c)

	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if err := tr.Err(); err != nil {
		t.Fatal(err)
	}

	lines := parseTrace(t, buf.Bytes())

	var frames []traceLine
	transfers := 0
	for _, l := range lines {
		if l.Ev == "transfer" {
			transfers++
			if l.Samples != 735 {
				t.Errorf("transfer at %d has %d samples, want 735", l.Cyc, l.Samples)
			}
			continue
		}
		if l.Cyc <= 29832 {
			frames = append(frames, l)
		}
	}
	if transfers != 2 {
		t.Errorf("got %d transfers, want 2", transfers)
	}

	want := []traceLine{
		{Cyc: 7459, Ev: "quarter"},
		{Cyc: 14915, Ev: "quarter"},
		{Cyc: 14915, Ev: "half"},
		{Cyc: 22373, Ev: "quarter"},
		{Cyc: 29831, Ev: "quarter"},
		{Cyc: 29831, Ev: "half"},
		{Cyc: 29831, Ev: "frame_irq"},
		{Cyc: 29831, Ev: "irq", Src: "fcnt"},
		{Cyc: 29832, Ev: "status", Val: 0x41},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestTracerWriteError(t *testing.T) {
	tr := NewTracer(errWriter{})
	tr.StatusRead(1, 0)
	tr.StatusRead(2, 0)
	if tr.Err() == nil {
		t.Errorf("Err() = nil, want an error")
	}
}
