package hwio

import "nesapu/emu/log"

// Device is a BankIO8 implementation that allows manual management of an entire
// range of addresses.
type Device struct {
	Name  string // name of the area (for debugging)
	Size  int    // size of the area
	Flags RWFlags

	ReadCb  func(addr uint16, peek bool) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		if !peek {
			log.ModHwIo.ErrorZ("invalid Read8 from writeonly device").
				String("name", d.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(addr, peek)
}

func (d *Device) Write8(addr uint16, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Write8 to readonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		return
	case d.WriteCb == nil:
		return
	}

	d.WriteCb(addr, val)
}
