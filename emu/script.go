package emu

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"nesapu/emu/log"
)

// ErrInvalidScript is wrapped by all script validation errors.
var ErrInvalidScript = errors.New("invalid script")

// A Script is a timed sequence of CPU bus accesses to the APU registers.
type Script struct {
	Name     string `toml:"name"`
	Duration uint64 `toml:"duration"` // CPU cycles
	Ops      []Op   `toml:"op"`
}

// Op is a single bus access. Exactly one of Write or Read is set.
type Op struct {
	Cycle uint64  `toml:"cycle"`
	Write *uint16 `toml:"write"`
	Read  *uint16 `toml:"read"`
	Value uint8   `toml:"value"`
}

func (op Op) IsWrite() bool { return op.Write != nil }

// Addr returns the accessed address.
func (op Op) Addr() uint16 {
	if op.Write != nil {
		return *op.Write
	}
	if op.Read != nil {
		return *op.Read
	}
	return 0
}

func (op Op) String() string {
	if op.IsWrite() {
		return fmt.Sprintf("@%d write $%04X=%02X", op.Cycle, op.Addr(), op.Value)
	}
	return fmt.Sprintf("@%d read $%04X", op.Cycle, op.Addr())
}

// LoadScript reads and validates the script at path. A script without name
// is named after its file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := ParseScript(f, name)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return s, nil
}

// ParseScript decodes and validates a TOML script. name is used when the
// script doesn't have one.
func ParseScript(r io.Reader, name string) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.ModScript.Warnf("script %s: unknown key %q", name, key.String())
	}

	if s.Name == "" {
		s.Name = name
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every op and sorts them by cycle, keeping the order of
// ops on the same cycle.
func (s *Script) Validate() error {
	if s.Duration == 0 {
		return fmt.Errorf("%w: zero duration", ErrInvalidScript)
	}

	for i, op := range s.Ops {
		if err := op.validate(s.Duration); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}

	slices.SortStableFunc(s.Ops, func(a, b Op) int {
		return cmp.Compare(a.Cycle, b.Cycle)
	})
	return nil
}

func (op Op) validate(duration uint64) error {
	switch {
	case op.Write == nil && op.Read == nil:
		return fmt.Errorf("%w: neither read nor write address", ErrInvalidScript)
	case op.Write != nil && op.Read != nil:
		return fmt.Errorf("%w: both read and write address", ErrInvalidScript)
	case op.Write != nil && !Writable(*op.Write):
		return fmt.Errorf("%w: $%04X is not a writable APU register", ErrInvalidScript, *op.Write)
	case op.Read != nil && !Readable(*op.Read):
		return fmt.Errorf("%w: $%04X is not a readable APU register", ErrInvalidScript, *op.Read)
	case op.Read != nil && op.Value != 0:
		return fmt.Errorf("%w: value on a read", ErrInvalidScript)
	case op.Cycle > duration:
		return fmt.Errorf("%w: cycle %d beyond duration %d", ErrInvalidScript, op.Cycle, duration)
	}
	return nil
}
