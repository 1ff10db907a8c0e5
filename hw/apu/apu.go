package apu

import (
	"fmt"

	"nesapu/emu/log"
	"nesapu/hw/hwdefs"
	"nesapu/hw/hwio"
)

// APU is the NES audio processing unit: the frame sequencer, the five
// channels, the mixer and the sample buffer. It is passive: the CPU side
// writes and reads its registers and calls RunTo to catch up with the CPU
// clock.
type APU struct {
	Square1  squareChannel
	Square2  squareChannel
	Triangle triangleChannel
	Noise    noiseChannel
	DMC      dmcChannel

	frame  frameFlags
	jitter jitter

	globalCyc       uint64
	tick            uint8
	nextTickCyc     uint64
	nextTransferCyc uint64
	lastFrameCyc    uint64 // cycle of the last transfer

	irqRequested bool

	buf      *SampleBuffer
	mixer    *Mixer
	sink     Sink
	observer func(cyc uint64, ev Event)
}

// New returns an APU in power-on state, producing sample blocks at the rate
// of sink.
func New(sink Sink) *APU {
	buf := NewSampleBuffer(sink.SampleRate())
	a := &APU{
		Square1:  newSquareChannel(Square1, true),
		Square2:  newSquareChannel(Square2, false),
		Triangle: newTriangleChannel(),
		Noise:    newNoiseChannel(),

		nextTickCyc:     tickTable[0][0],
		nextTransferCyc: uint64(buf.ClocksNeeded()),

		buf:   buf,
		mixer: newMixer(buf),
		sink:  sink,
	}

	a.Square1.regs = mustBank(&a.Square1)
	a.Square2.regs = mustBank(&a.Square2)
	a.Triangle.regs = mustBank(&a.Triangle)
	a.Noise.regs = mustBank(&a.Noise)
	a.DMC.regs = mustBank(&a.DMC)

	return a
}

// Mixer returns the APU mixer, to adjust channel volumes.
func (a *APU) Mixer() *Mixer { return a.mixer }

// Cycle returns the CPU cycle the APU has been run to.
func (a *APU) Cycle() uint64 { return a.globalCyc }

// RequestedRunCycle returns the next cycle at which the APU has work to do.
// The CPU must not run past it without calling RunTo first.
func (a *APU) RequestedRunCycle() uint64 {
	// The frame IRQ happens on a tick, so the next tick covers it.
	return a.nextTickCyc
}

// SetObserver registers a function called for each frame sequencer event.
// A nil function removes the observer.
func (a *APU) SetObserver(fn func(cyc uint64, ev Event)) {
	a.observer = fn
}

func (a *APU) notify(ev Event) {
	if a.observer != nil {
		a.observer(a.globalCyc, ev)
	}
}

// RunTo runs the APU up to the given CPU cycle, processing each due event in
// cycle order. It returns the interrupts raised during that span.
func (a *APU) RunTo(cycle uint64) hwdefs.IRQSource {
	var irq hwdefs.IRQSource

	for a.globalCyc < cycle {
		cur := a.globalCyc

		next := min(cycle, a.nextTickCyc, a.nextTransferCyc)
		if a.jitter.pending {
			next = min(next, a.jitter.cycle)
		}

		a.play(cur, next)
		a.globalCyc = next

		if a.jitter.pending && a.globalCyc == a.jitter.cycle {
			a.jitter.pending = false
			a.writeFrame(a.jitter.val)
		}
		if a.globalCyc == a.nextTickCyc {
			irq |= a.tickFrame()
		}
		if a.globalCyc == a.nextTransferCyc {
			a.transfer()
		}
	}
	return irq
}

func (a *APU) play(from, to uint64) {
	rfrom := uint32(from - a.lastFrameCyc)
	rto := uint32(to - a.lastFrameCyc)

	a.Square1.play(rfrom, rto, a.mixer)
	a.Square2.play(rfrom, rto, a.mixer)
	a.Triangle.play(rfrom, rto, a.mixer)
	a.Noise.play(rfrom, rto, a.mixer)
	a.DMC.play(rfrom, rto, a.mixer)
}

// transfer ends the current sample block and hands it to the sink.
func (a *APU) transfer() {
	elapsed := uint32(a.globalCyc - a.lastFrameCyc)
	a.lastFrameCyc = a.globalCyc

	a.mixer.endFrame(elapsed)
	samples := a.buf.Read()
	a.nextTransferCyc = a.globalCyc + uint64(a.buf.ClocksNeeded())

	a.notify(Transfer)
	a.sink.Play(samples)
}

// Write writes val into the register at addr. Only the address bits below
// 0x20 are decoded.
func (a *APU) Write(addr uint16, val uint8) {
	off := addr % 0x20
	switch {
	case off <= 0x03:
		a.Square1.write(off, val)
	case off <= 0x07:
		a.Square2.write(off, val)
	case off <= 0x0B:
		a.Triangle.write(off, val)
	case off <= 0x0F:
		a.Noise.write(off, val)
	case off <= 0x13:
		a.DMC.write(off, val)
	case off == 0x14, off == 0x16:
	case off == 0x15:
		a.writeStatus(val)
	case off == 0x17:
		if a.globalCyc%2 == 0 {
			a.writeFrame(val)
		} else {
			log.ModSound.DebugZ("frame counter write delayed").
				Uint64("cyc", a.globalCyc).
				Hex8("val", val).
				End()
			a.jitter = jitter{pending: true, cycle: a.globalCyc + 1, val: val}
		}
	default:
		panic(fmt.Sprintf("apu: invalid register offset 0x%02x", off))
	}
}

func (a *APU) writeStatus(val uint8) {
	a.Square1.setEnabled(hwio.GetBit8(val, 0))
	a.Square2.setEnabled(hwio.GetBit8(val, 1))
	a.Triangle.setEnabled(hwio.GetBit8(val, 2))
	a.Noise.setEnabled(hwio.GetBit8(val, 3))

	log.ModSound.InfoZ("write status").Hex8("val", val).End()
}

// ReadStatus reads the status register ($4015) at the given cycle. The status
// reflects the state before cycle, reading it acknowledges the frame IRQ. It
// returns the interrupts raised while running to cycle.
func (a *APU) ReadStatus(cycle uint64) (hwdefs.IRQSource, uint8) {
	var irq hwdefs.IRQSource
	if cycle > 0 {
		irq = a.RunTo(cycle - 1)
	}

	status := a.PeekStatus()
	a.irqRequested = false

	log.ModSound.DebugZ("read status").
		Uint64("cyc", cycle).
		Hex8("val", status).
		End()

	return irq | a.RunTo(cycle), status
}

// PeekStatus returns the current status byte, without side effects.
//
//	bit 0-3: length counter active for square1, square2, triangle, noise
//	bit 6:   frame interrupt pending
func (a *APU) PeekStatus() uint8 {
	var status uint8
	hwio.SetBitTo8(&status, 0, a.Square1.active())
	hwio.SetBitTo8(&status, 1, a.Square2.active())
	hwio.SetBitTo8(&status, 2, a.Triangle.active())
	hwio.SetBitTo8(&status, 3, a.Noise.active())
	hwio.SetBitTo8(&status, 6, a.irqRequested)
	return status
}

// PeekRegister returns the last value written to a channel register
// ($4000-$4013), or 0 for other offsets.
func (a *APU) PeekRegister(addr uint16) uint8 {
	off := addr % 0x20
	switch {
	case off <= 0x03:
		return a.Square1.regs.peek(off)
	case off <= 0x07:
		return a.Square2.regs.peek(off)
	case off <= 0x0B:
		return a.Triangle.regs.peek(off)
	case off <= 0x0F:
		return a.Noise.regs.peek(off)
	case off <= 0x13:
		return a.DMC.regs.peek(off)
	}
	return 0
}
