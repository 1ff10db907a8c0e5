package hwio

import "testing"

func TestTableMapping(t *testing.T) {
	tbl := NewTable("test")

	var written []uint16
	dev := &Device{
		Name: "dev",
		Size: 4,
		ReadCb: func(addr uint16, peek bool) uint8 {
			return uint8(addr)
		},
		WriteCb: func(addr uint16, val uint8) {
			written = append(written, addr)
		},
	}
	var last uint8
	status := &Device{
		Name:    "status",
		Size:    1,
		ReadCb:  func(addr uint16, peek bool) uint8 { return 0x77 },
		WriteCb: func(addr uint16, val uint8) { last = val },
	}

	tbl.MapDevice(0x4000, dev)
	tbl.MapDevice(0x4010, status)

	for addr := uint16(0x4000); addr < 0x4004; addr++ {
		if got := tbl.Read8(addr, false); got != uint8(addr) {
			t.Errorf("Read8(%04x) = %02x, want %02x", addr, got, uint8(addr))
		}
	}
	if got := tbl.Peek8(0x4010); got != 0x77 {
		t.Errorf("Peek8(4010) = %02x, want 77", got)
	}
	if tbl.Mapped(0x4004) || tbl.Read8(0x4004, false) != 0 {
		t.Errorf("0x4004 should be unmapped")
	}

	tbl.Write8(0x4003, 1)
	tbl.Write8(0x4008, 1)
	tbl.Write8(0x4010, 0x12)
	if len(written) != 1 || written[0] != 0x4003 {
		t.Errorf("device writes = %v, want [0x4003]", written)
	}
	if last != 0x12 {
		t.Errorf("status write = %02x, want 12", last)
	}
}

func TestTableOverlapPanics(t *testing.T) {
	tbl := NewTable("test")
	tbl.MapDevice(0x4000, &Device{Name: "a", Size: 0x10})

	defer func() {
		if recover() == nil {
			t.Errorf("overlapping mapping did not panic")
		}
	}()
	tbl.MapDevice(0x400F, &Device{Name: "b", Size: 1})
}
