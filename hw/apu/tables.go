package apu

// Cycles between two frame-sequencer ticks, indexed by mode then by the step
// about to be reached. Slot 0 is only used right after a $4017 write. NTSC
// timings: the APU runs at half the CPU clock so steps land on half cycles,
// which the uneven deltas account for.
var tickTable = [2][6]uint64{
	{7459, 7456, 7458, 7458, 7458, 0},
	{1, 7458, 7456, 7458, 7458, 7452},
}

type frameType uint8

const (
	noFrame      frameType = iota
	quarterFrame           // envelopes, triangle linear counter
	halfFrame              // quarter frame + length counters, sweep units
)

// What each step clocks, indexed by mode then step.
var stepFrames = [2][6]frameType{
	{noFrame, quarterFrame, halfFrame, quarterFrame, halfFrame, noFrame},
	{noFrame, halfFrame, quarterFrame, halfFrame, quarterFrame, noFrame},
}

// Last step of each sequence, after which the step counter wraps to 0.
var lastStep = [2]uint8{4, 5}

var lengthLUT = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// duty cycle sequences for the square channels.
var squareDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0},
}

var triangleSequence = [32]int8{
	15, 14, 13, 12, 11, 10, 9, 8,
	7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// noise timer periods, in CPU cycles.
var noisePeriodLUT = [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068}
