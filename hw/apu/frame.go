package apu

import (
	"nesapu/emu/log"
	"nesapu/hw/hwdefs"
)

// frameFlags is the value of the frame counter register ($4017).
type frameFlags uint8

const (
	frameMode   frameFlags = 0x80 // 0: 4-step, 1: 5-step
	suppressIRQ frameFlags = 0x40
)

func (f frameFlags) mode() uint8 {
	if f&frameMode != 0 {
		return 1
	}
	return 0
}

// jitter holds a $4017 write issued on an odd cycle, applied one cycle later.
type jitter struct {
	pending bool
	cycle   uint64
	val     uint8
}

// tickFrame is the 240Hz output of the frame sequencer divider.
func (a *APU) tickFrame() hwdefs.IRQSource {
	a.tick++
	mode := a.frame.mode()
	a.nextTickCyc = a.globalCyc + tickTable[mode][a.tick]

	a.clockFrame(stepFrames[mode][a.tick])

	var irq hwdefs.IRQSource
	if mode == 0 && a.tick == lastStep[0] {
		irq = a.raiseIRQ()
	}
	if a.tick >= lastStep[mode] {
		a.tick = 0
	}
	return irq
}

func (a *APU) clockFrame(ft frameType) {
	if ft == noFrame {
		return
	}

	a.Square1.tickEnvelope()
	a.Square2.tickEnvelope()
	a.Triangle.tickEnvelope()
	a.Noise.tickEnvelope()
	a.notify(EnvelopeClock)

	if ft == halfFrame {
		a.Square1.tickLength()
		a.Square2.tickLength()
		a.Triangle.tickLength()
		a.Noise.tickLength()

		a.Square1.tickSweep()
		a.Square2.tickSweep()
		a.notify(LengthClock)
	}
}

func (a *APU) raiseIRQ() hwdefs.IRQSource {
	if a.frame&suppressIRQ != 0 {
		return 0
	}

	a.irqRequested = true
	log.ModSound.DebugZ("frame irq").Uint64("cyc", a.globalCyc).End()
	a.notify(FrameIRQ)
	return hwdefs.FrameCounter
}

// writeFrame applies a value written to the frame counter register.
func (a *APU) writeFrame(val uint8) {
	a.frame = frameFlags(val) & (frameMode | suppressIRQ)
	if a.frame&suppressIRQ != 0 {
		a.irqRequested = false
	}

	a.tick = 0
	a.nextTickCyc = a.globalCyc + tickTable[a.frame.mode()][0]

	log.ModSound.InfoZ("write frame counter").
		Hex8("val", val).
		Uint8("mode", a.frame.mode()).
		Bool("irq inhibit", a.frame&suppressIRQ != 0).
		Uint64("next tick", a.nextTickCyc).
		End()
	a.notify(ModeWrite)

	// Entering 5-step mode clocks envelopes and length counters right away.
	// Slot 0 of the 5-step sequence then clocks them once more on the next
	// cycle: both clocks are intended.
	if a.frame.mode() == 1 {
		a.clockFrame(halfFrame)
	}
}
