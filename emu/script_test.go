package emu

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func addr(a uint16) *uint16 { return &a }

func TestLoadScript(t *testing.T) {
	s, err := LoadScript("testdata/irq.toml")
	if err != nil {
		t.Fatal(err)
	}

	want := &Script{
		Name:     "irq",
		Duration: 60000,
		Ops: []Op{
			{Cycle: 0, Write: addr(0x4015), Value: 0x01},
			{Cycle: 0, Write: addr(0x4003), Value: 0x08},
			{Cycle: 29832, Read: addr(0x4015)},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScriptDefaultName(t *testing.T) {
	s, err := LoadScript("testdata/suppress.toml")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "suppress" {
		t.Errorf("name = %q, want %q", s.Name, "suppress")
	}
}

func TestLoadScriptMissing(t *testing.T) {
	if _, err := LoadScript("testdata/nope.toml"); err == nil {
		t.Errorf("LoadScript() = nil error, want an error")
	}
}

func TestScriptSortsOps(t *testing.T) {
	const src = `
duration = 100
[[op]]
cycle = 50
write = 0x4000
value = 1
[[op]]
cycle = 10
write = 0x4001
value = 2
[[op]]
cycle = 50
write = 0x4002
value = 3
`
	s, err := ParseScript(strings.NewReader(src), "sort")
	if err != nil {
		t.Fatal(err)
	}

	var got []uint16
	for _, op := range s.Ops {
		got = append(got, op.Addr())
	}
	if diff := cmp.Diff([]uint16{0x4001, 0x4000, 0x4002}, got); diff != "" {
		t.Errorf("op order mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"zero duration", `
[[op]]
cycle = 0
write = 0x4015
`},
		{"no address", `
duration = 10
[[op]]
cycle = 0
value = 1
`},
		{"both addresses", `
duration = 10
[[op]]
cycle = 0
write = 0x4015
read = 0x4015
`},
		{"oam dma", `
duration = 10
[[op]]
cycle = 0
write = 0x4014
`},
		{"controller", `
duration = 10
[[op]]
cycle = 0
write = 0x4016
`},
		{"read write-only", `
duration = 10
[[op]]
cycle = 0
read = 0x4000
`},
		{"read with value", `
duration = 10
[[op]]
cycle = 0
read = 0x4015
value = 1
`},
		{"beyond duration", `
duration = 10
[[op]]
cycle = 11
write = 0x4015
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.src), tt.name)
			if !errors.Is(err, ErrInvalidScript) {
				t.Errorf("ParseScript() error = %v, want %v", err, ErrInvalidScript)
			}
		})
	}
}

func TestScriptDecodeError(t *testing.T) {
	_, err := ParseScript(strings.NewReader("duration = \"long\""), "bad")
	if err == nil || errors.Is(err, ErrInvalidScript) {
		t.Errorf("ParseScript() error = %v, want a decode error", err)
	}
}

func TestOpString(t *testing.T) {
	w := Op{Cycle: 12, Write: addr(0x4015), Value: 0x0F}
	if got := w.String(); got != "@12 write $4015=0F" {
		t.Errorf("String() = %q", got)
	}
	r := Op{Cycle: 3, Read: addr(0x4015)}
	if got := r.String(); got != "@3 read $4015" {
		t.Errorf("String() = %q", got)
	}
}
