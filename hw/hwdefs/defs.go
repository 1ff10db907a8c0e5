package hwdefs

import "strings"

type IRQSource uint8

const (
	External IRQSource = 1 << iota
	FrameCounter
	DMC

	numSources = 3
)

var irqSrcNames = [numSources]string{
	"ext",
	"fcnt",
	"dmc",
}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Has reports whether all bits of src are set in irq.
func (irq IRQSource) Has(src IRQSource) bool {
	return src != 0 && irq&src == src
}

const NumAudioChannels = 5 // Square1, Square2, Triangle, Noise, DMC

// NTSCClockRate is the NTSC 2A03 CPU clock, in Hz.
const NTSCClockRate = 1789773

// APU registers window on the CPU bus.
const (
	APUBase uint16 = 0x4000
	APUEnd  uint16 = 0x4017
)
