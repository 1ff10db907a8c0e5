package apu

import (
	"nesapu/emu/log"
	"nesapu/hw/hwio"
)

// The triangleChannel contains the following: Timer, 32-step sequencer, Length
// Counter, Linear Counter, 4-bit DAC.
//
//	+---------+    +---------+
//	|LinearCtr|    | Length  |
//	+---------+    +---------+
//	     |              |
//	     v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
type triangleChannel struct {
	lenCounter lengthCounter
	timer      timer
	regs       regBank

	linearCounter       uint8
	linearCounterReload uint8
	linearReload        bool
	linearCtrl          bool

	pos uint8 // current position on "triangleSequence".

	Linear hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`
	Unused hwio.Reg8 `hwio:"offset=0x01,writeonly"`
	Timer  hwio.Reg8 `hwio:"offset=0x02,writeonly,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x03,writeonly,wcb"`
}

func newTriangleChannel() triangleChannel {
	return triangleChannel{
		timer: timer{channel: Triangle},
	}
}

func (tc *triangleChannel) write(off uint16, val uint8) {
	tc.regs.write(off, val)
}

func (tc *triangleChannel) play(from, to uint32, m *Mixer) {
	for tc.timer.advance(&from, to) {
		// The sequencer is clocked by the timer as long as both the linear
		// counter and the length counter are nonzero.
		if tc.lenCounter.active() && tc.linearCounter > 0 {
			tc.pos = (tc.pos + 1) & 0x1F

			if tc.timer.period >= 2 {
				// Periods below 2 are ultrasonic, only producing pops.
				tc.timer.addOutput(m, from, triangleSequence[tc.pos])
			}
		}
	}
}

func (tc *triangleChannel) WriteLINEAR(_, val uint8) {
	tc.linearCtrl = (val & 0x80) == 0x80
	tc.linearCounterReload = val & 0x7F

	// The control flag doubles as the length counter halt flag.
	tc.lenCounter.halt = tc.linearCtrl

	log.ModSound.InfoZ("write triangle linear").
		Uint8("reg", val).
		Bool("ctrl", tc.linearCtrl).
		Uint8("reload", tc.linearCounterReload).
		End()
}

func (tc *triangleChannel) WriteTIMER(_, val uint8) {
	period := (tc.timer.period & 0xFF00) | uint16(val)
	tc.timer.period = period

	log.ModSound.InfoZ("write triangle timer").
		Uint8("reg", val).
		Uint16("period", period).
		End()
}

func (tc *triangleChannel) WriteLENGTH(_, val uint8) {
	tc.lenCounter.load(val >> 3)

	period := (tc.timer.period & 0xFF) | (uint16(val&0x07) << 8)
	tc.timer.period = period

	// Sets the linear counter reload flag (side effect). The sequencer
	// position is left alone.
	tc.linearReload = true

	log.ModSound.InfoZ("write triangle length").
		Uint8("reg", val).
		Uint16("period", period).
		Uint8("length", val>>3).
		End()
}

// tickEnvelope clocks the linear counter, the triangle has no envelope.
func (tc *triangleChannel) tickEnvelope() {
	if tc.linearReload {
		tc.linearCounter = tc.linearCounterReload
	} else if tc.linearCounter > 0 {
		tc.linearCounter--
	}

	if !tc.linearCtrl {
		tc.linearReload = false
	}
}

func (tc *triangleChannel) tickLength() {
	tc.lenCounter.tick()
}

func (tc *triangleChannel) setEnabled(enabled bool) {
	tc.lenCounter.setEnabled(enabled)
}

func (tc *triangleChannel) active() bool {
	return tc.lenCounter.active()
}
