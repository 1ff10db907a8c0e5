package apu

import (
	"nesapu/emu/log"
	"nesapu/hw/hwio"
)

// dmcChannel only accepts its registers ($4010-$4013). Sample fetching,
// output level and the DMC interrupt are not emulated.
type dmcChannel struct {
	regs regBank

	Freq   hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`
	Raw    hwio.Reg8 `hwio:"offset=0x01,writeonly,wcb"`
	Start  hwio.Reg8 `hwio:"offset=0x02,writeonly,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x03,writeonly,wcb"`
}

func (dc *dmcChannel) write(off uint16, val uint8) {
	dc.regs.write(off, val)
}

func (dc *dmcChannel) WriteFREQ(_, val uint8) {
	log.ModSound.DebugZ("write dmc freq (ignored)").Hex8("val", val).End()
}

func (dc *dmcChannel) WriteRAW(_, val uint8) {
	log.ModSound.DebugZ("write dmc raw (ignored)").Hex8("val", val).End()
}

func (dc *dmcChannel) WriteSTART(_, val uint8) {
	log.ModSound.DebugZ("write dmc start (ignored)").Hex8("val", val).End()
}

func (dc *dmcChannel) WriteLENGTH(_, val uint8) {
	log.ModSound.DebugZ("write dmc length (ignored)").Hex8("val", val).End()
}

func (dc *dmcChannel) play(_, _ uint32, _ *Mixer) {}
