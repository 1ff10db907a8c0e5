package hwio

import (
	"fmt"
	"slices"

	"nesapu/emu/log"
)

// log unmapped accesses (useful for debugging but verbose on NES since many
// games read from open bus)
const logUnmapped = false

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

type mapping struct {
	begin, end uint16 // inclusive
	io         BankIO8
}

// Table dispatches bus accesses to the devices mapped in it. Mapped ranges
// never overlap.
type Table struct {
	Name string

	maps []mapping // sorted by begin
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

func (t *Table) Reset() {
	t.maps = t.maps[:0]
}

func (t *Table) mapBus8(begin, end uint16, io BankIO8) {
	if end < begin {
		panic(fmt.Errorf("hwio: %s: invalid range [%04x-%04x]", t.Name, begin, end))
	}
	idx, _ := slices.BinarySearchFunc(t.maps, begin, func(m mapping, addr uint16) int {
		return int(m.begin) - int(addr)
	})
	if idx > 0 && t.maps[idx-1].end >= begin {
		panic(fmt.Errorf("hwio: %s: range [%04x-%04x] overlaps [%04x-%04x]",
			t.Name, begin, end, t.maps[idx-1].begin, t.maps[idx-1].end))
	}
	if idx < len(t.maps) && t.maps[idx].begin <= end {
		panic(fmt.Errorf("hwio: %s: range [%04x-%04x] overlaps [%04x-%04x]",
			t.Name, begin, end, t.maps[idx].begin, t.maps[idx].end))
	}
	t.maps = slices.Insert(t.maps, idx, mapping{begin: begin, end: end, io: io})
}

func (t *Table) MapDevice(addr uint16, io *Device) {
	log.ModHwIo.DebugZ("mapping device").
		Hex16("addr", addr).
		Hex16("size", uint16(io.Size)).
		String("area", io.Name).
		String("bus", t.Name).
		End()
	t.mapBus8(addr, addr+uint16(io.Size)-1, io)
}

func (t *Table) search(addr uint16) BankIO8 {
	idx, found := slices.BinarySearchFunc(t.maps, addr, func(m mapping, addr uint16) int {
		return int(m.begin) - int(addr)
	})
	if found {
		return t.maps[idx].io
	}
	if idx > 0 && t.maps[idx-1].end >= addr {
		return t.maps[idx-1].io
	}
	return nil
}

// Mapped reports whether a device is mapped at addr.
func (t *Table) Mapped(addr uint16) bool {
	return t.search(addr) != nil
}

// Read8 searches in the table for the device mapped at the given address and
// forward the read to it. Unmapped addresses read as 0.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.search(addr)
	if io == nil {
		if logUnmapped && !peek {
			log.ModHwIo.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	return io.Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.search(addr)
	if io == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	io.Write8(addr, val)
}
