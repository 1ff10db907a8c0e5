package apu

import (
	"nesapu/emu/log"
	"nesapu/hw/hwio"
)

// noiseChannel generates pseudo-random 1-bit noise at 16 different frequencies.
//
//	      Timer --> Shift Register   Length Counter
//	                    |                |
//	                    v                v
//	Envelope -------> Gate ----------> Gate --> (to mixer)
type noiseChannel struct {
	Volume hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`
	Unused hwio.Reg8 `hwio:"offset=0x01,writeonly"`
	Period hwio.Reg8 `hwio:"offset=0x02,writeonly,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x03,writeonly,wcb"`

	shiftReg uint16
	mode     bool // short mode: feedback from bit 6 instead of bit 1.
	timer    timer
	env      envelope
	regs     regBank
}

func newNoiseChannel() noiseChannel {
	return noiseChannel{
		shiftReg: 1,
		timer: timer{
			channel: Noise,
			period:  noisePeriodLUT[0] - 1,
		},
	}
}

func (nc *noiseChannel) write(off uint16, val uint8) {
	nc.regs.write(off, val)
}

func (nc *noiseChannel) WriteVOLUME(_, val uint8) {
	log.ModSound.InfoZ("write noise volume").Uint8("val", val).End()
	nc.env.init(val)
}

func (nc *noiseChannel) WritePERIOD(_, val uint8) {
	log.ModSound.InfoZ("write noise period").Uint8("val", val).End()
	nc.timer.period = noisePeriodLUT[val&0x0F] - 1
	nc.mode = val&0x80 != 0
}

func (nc *noiseChannel) WriteLENGTH(_, val uint8) {
	log.ModSound.InfoZ("write noise length").Uint8("val", val).End()
	nc.env.lenCounter.load(val >> 3)
	// The shift register keeps its state, only the envelope restarts.
	nc.env.restart()
}

// clockShiftRegister advances the LFSR by one step.
func (nc *noiseChannel) clockShiftRegister() {
	// Feedback is calculated as the exclusive-OR of bit 0 and one other
	// bit: bit 6 if Mode flag is set, otherwise bit 1.
	modebit := 1
	if nc.mode {
		modebit = 6
	}

	feedback := (nc.shiftReg & 0x01) ^ ((nc.shiftReg >> modebit) & 0x01)
	nc.shiftReg >>= 1
	nc.shiftReg |= (feedback << 14)
}

func (nc *noiseChannel) play(from, to uint32, m *Mixer) {
	for nc.timer.advance(&from, to) {
		nc.clockShiftRegister()

		if nc.isMuted() {
			nc.timer.addOutput(m, from, 0)
		} else {
			nc.timer.addOutput(m, from, int8(nc.env.output()))
		}
	}
}

func (nc *noiseChannel) isMuted() bool {
	// The mixer receives the current envelope volume except when bit 0 of the
	// shift register is set, or the length counter is zero.
	return (nc.shiftReg & 0x01) == 0x01
}

func (nc *noiseChannel) tickEnvelope() {
	nc.env.tick()
}

func (nc *noiseChannel) tickLength() {
	nc.env.lenCounter.tick()
}

func (nc *noiseChannel) setEnabled(enabled bool) {
	nc.env.lenCounter.setEnabled(enabled)
}

func (nc *noiseChannel) active() bool {
	return nc.env.lenCounter.active()
}
