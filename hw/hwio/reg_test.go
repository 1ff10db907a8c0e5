package hwio

import "testing"

func TestReg8(t *testing.T) {
	r := Reg8{Value: 0x11, RoMask: 0xF0}

	if got := r.Read8(0, false); got != 0x11 {
		t.Errorf("invalid read: %x", got)
	}
	if got := r.Read8(9999, false); got != 0x11 {
		t.Errorf("invalid read with offset: %x", got)
	}

	r.Write8(0, 0x77)
	if r.Value != 0x17 {
		t.Errorf("writemask not respected: %x", r.Value)
	}
	r.Write8(9999, 0x88)
	if r.Value != 0x18 {
		t.Errorf("writemask with offset not respected: %x", r.Value)
	}
}

func TestReg8Flags(t *testing.T) {
	ro := Reg8{Name: "ro", Value: 0x42, Flags: ReadOnlyFlag}
	ro.Write8(0, 0xFF)
	if ro.Value != 0x42 {
		t.Errorf("readonly reg was written: %x", ro.Value)
	}

	var calls int
	wo := Reg8{Name: "wo", Flags: WriteOnlyFlag, WriteCb: func(old, val uint8) { calls++ }}
	wo.Write8(0, 0x24)
	if calls != 1 {
		t.Errorf("write callback called %d times, want 1", calls)
	}
	if got := wo.Read8(0, false); got != 0 {
		t.Errorf("read of writeonly reg = %x, want 0", got)
	}
	if got := wo.Read8(0, true); got != 0x24 {
		t.Errorf("peek of writeonly reg = %x, want 24", got)
	}
}

func TestBitops(t *testing.T) {
	var v uint8
	SetBit8(&v, 3)
	if v != 0x08 || !GetBit8(v, 3) || GetBiti8(v, 3) != 1 {
		t.Errorf("SetBit8(3) = %08b", v)
	}
	SetBitTo8(&v, 6, true)
	SetBitTo8(&v, 3, false)
	if v != 0x40 {
		t.Errorf("SetBitTo8 = %08b, want 01000000", v)
	}
	ClearBit8(&v, 6)
	if v != 0 {
		t.Errorf("ClearBit8 = %08b, want 0", v)
	}
}
