package apu

import "nesapu/hw/hwio"

// regBank holds the four sub-registers of a channel, by local offset.
type regBank [4]*hwio.Reg8

func mustBank(bank any) regBank {
	regs, err := hwio.BankRegs(bank)
	if err != nil {
		panic(err)
	}

	var rb regBank
	for _, r := range regs {
		if int(r.Offset) >= len(rb) {
			panic("apu: channel register offset out of range")
		}
		rb[r.Offset] = r.Reg
	}
	return rb
}

func (rb *regBank) write(off uint16, val uint8) {
	rb[off&0x03].Write8(off, val)
}

func (rb *regBank) peek(off uint16) uint8 {
	return rb[off&0x03].Read8(off, true)
}
