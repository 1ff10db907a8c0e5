package emu

import (
	"nesapu/emu/log"
	"nesapu/hw/apu"
	"nesapu/hw/hwdefs"
	"nesapu/hw/hwio"
)

// CPU addresses of the APU registers.
const (
	regChannelsBegin = hwdefs.APUBase
	regChannelsEnd   = hwdefs.APUBase + 0x13
	regStatus        = hwdefs.APUBase + 0x15
	regFrameCounter  = hwdefs.APUEnd
)

// Writable reports whether addr is an APU register the CPU can write.
func Writable(addr uint16) bool {
	return (addr >= regChannelsBegin && addr <= regChannelsEnd) ||
		addr == regStatus || addr == regFrameCounter
}

// Readable reports whether addr is an APU register the CPU can read.
func Readable(addr uint16) bool {
	return addr == regStatus
}

// Bus is the CPU bus, restricted to the APU registers. $4014 (OAM DMA) and
// $4016 (controllers) belong to other devices and are left unmapped.
type Bus struct {
	*hwio.Table

	apu   *apu.APU
	clock func() uint64
	irq   func(hwdefs.IRQSource)

	channels     hwio.Device
	status       hwio.Device
	frameCounter hwio.Device
}

// NewBus maps the registers of a on a new bus. clock returns the CPU cycle
// of the current access, and irq receives the interrupts raised while
// catching up on status reads.
func NewBus(a *apu.APU, clock func() uint64, irq func(hwdefs.IRQSource)) *Bus {
	b := &Bus{
		Table: hwio.NewTable("cpu"),
		apu:   a,
		clock: clock,
		irq:   irq,
	}

	b.channels = hwio.Device{
		Name:    "apu channels",
		Size:    int(regChannelsEnd-regChannelsBegin) + 1,
		ReadCb:  b.readChannels,
		WriteCb: a.Write,
	}
	b.status = hwio.Device{
		Name:    "apu status",
		Size:    1,
		ReadCb:  b.readStatus,
		WriteCb: a.Write,
	}
	b.frameCounter = hwio.Device{
		Name:    "apu frame counter",
		Size:    1,
		Flags:   hwio.WriteOnlyFlag,
		WriteCb: a.Write,
	}

	b.MapDevice(regChannelsBegin, &b.channels)
	b.MapDevice(regStatus, &b.status)
	b.MapDevice(regFrameCounter, &b.frameCounter)
	return b
}

// Channel registers are write-only, peeking returns the last written value.
func (b *Bus) readChannels(addr uint16, peek bool) uint8 {
	if peek {
		return b.apu.PeekRegister(addr)
	}
	log.ModHwIo.ErrorZ("invalid Read8 from writeonly register").
		Hex16("addr", addr).
		End()
	return 0
}

func (b *Bus) readStatus(_ uint16, peek bool) uint8 {
	if peek {
		return b.apu.PeekStatus()
	}

	irq, val := b.apu.ReadStatus(b.clock())
	if irq != 0 && b.irq != nil {
		b.irq(irq)
	}
	return val
}
