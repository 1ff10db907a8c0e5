package apu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTimerAdvance(t *testing.T) {
	tm := timer{period: 3}

	var reloads []uint32
	from := uint32(0)
	for tm.advance(&from, 10) {
		reloads = append(reloads, from)
	}

	if diff := cmp.Diff([]uint32{1, 5, 9}, reloads); diff != "" {
		t.Errorf("reload cycles mismatch (-want +got):\n%s", diff)
	}
	if from != 10 {
		t.Errorf("from = %d, want 10", from)
	}
	if tm.counter != 2 {
		t.Errorf("counter = %d, want 2", tm.counter)
	}

	// Resume in the next window.
	from = 10
	if !tm.advance(&from, 20) || from != 13 {
		t.Errorf("next reload at %d, want 13", from)
	}
}

func TestLengthCounter(t *testing.T) {
	var lc lengthCounter
	lc.load(1)
	if lc.active() {
		t.Fatal("load while disabled must be ignored")
	}

	lc.setEnabled(true)
	lc.load(1)
	if lc.counter != 254 {
		t.Fatalf("counter = %d, want 254", lc.counter)
	}

	lc.halt = true
	lc.tick()
	if lc.counter != 254 {
		t.Errorf("halted counter = %d, want 254", lc.counter)
	}

	lc.halt = false
	lc.tick()
	if lc.counter != 253 {
		t.Errorf("counter = %d, want 253", lc.counter)
	}

	lc.setEnabled(false)
	if lc.active() {
		t.Errorf("disabled counter still active")
	}
	lc.tick()
	if lc.counter != 0 {
		t.Errorf("counter = %d, want 0", lc.counter)
	}
}

func TestEnvelopeDecay(t *testing.T) {
	var env envelope
	env.lenCounter.setEnabled(true)
	env.lenCounter.load(1)

	env.init(0x00) // decay, period 0, no loop
	env.restart()
	env.tick()
	if got := env.output(); got != 15 {
		t.Fatalf("output after restart = %d, want 15", got)
	}

	for want := 14; want >= 0; want-- {
		env.tick()
		if got := env.output(); got != uint8(want) {
			t.Fatalf("output = %d, want %d", got, want)
		}
	}
	env.tick()
	if got := env.output(); got != 0 {
		t.Errorf("output without loop = %d, want 0", got)
	}

	env.init(0x20) // loop
	env.tick()
	if got := env.output(); got != 15 {
		t.Errorf("output with loop = %d, want 15", got)
	}
}

func TestEnvelopeDivider(t *testing.T) {
	var env envelope
	env.lenCounter.setEnabled(true)
	env.lenCounter.load(1)

	env.init(0x02) // period 2: decays every 3 clocks
	env.restart()
	env.tick()

	var got []uint8
	for range 6 {
		env.tick()
		got = append(got, env.output())
	}
	if diff := cmp.Diff([]uint8{15, 15, 14, 14, 14, 13}, got); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvelopeConstantVolume(t *testing.T) {
	var env envelope
	env.init(0x1A)
	if got := env.output(); got != 0 {
		t.Errorf("output with inactive length = %d, want 0", got)
	}

	env.lenCounter.setEnabled(true)
	env.lenCounter.load(1)
	if got := env.output(); got != 0x0A {
		t.Errorf("output = %d, want 10", got)
	}
}

func TestSweepTargetPeriod(t *testing.T) {
	tests := []struct {
		name       string
		isChannel1 bool
		sweep      uint8
		want       uint32
	}{
		{"pulse1 add", true, 0x81, 0x180},
		{"pulse2 add", false, 0x81, 0x180},
		{"pulse1 negate", true, 0x89, 0x7F},
		{"pulse2 negate", false, 0x89, 0x80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newSquareChannel(Square1, tt.isChannel1)
			sc.setPeriod(0x100)
			sc.initSweep(tt.sweep)
			if sc.sweepTargetPeriod != tt.want {
				t.Errorf("target period = %#x, want %#x", sc.sweepTargetPeriod, tt.want)
			}
		})
	}
}

func TestSweepUpdatesPeriod(t *testing.T) {
	sc := newSquareChannel(Square2, false)
	sc.setPeriod(0x100)
	sc.initSweep(0x81) // enabled, period 1, shift 1

	sc.tickSweep() // reload
	if sc.realPeriod != 0x100 {
		t.Fatalf("period = %#x, want unchanged on reload", sc.realPeriod)
	}
	sc.tickSweep()
	if sc.realPeriod != 0x180 {
		t.Errorf("period = %#x, want 0x180", sc.realPeriod)
	}
	if sc.timer.period != 0x180*2+1 {
		t.Errorf("timer period = %d, want %d", sc.timer.period, 0x180*2+1)
	}
}

func TestSquareMuted(t *testing.T) {
	tests := []struct {
		name   string
		period uint16
		sweep  uint8
		muted  bool
	}{
		{"short period", 7, 0x00, true},
		{"min period", 8, 0x00, false},
		{"target overflow", 0x600, 0x01, true},
		{"negate never overflows", 0x600, 0x09, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newSquareChannel(Square1, true)
			sc.setPeriod(tt.period)
			sc.initSweep(tt.sweep)
			if got := sc.isMuted(); got != tt.muted {
				t.Errorf("isMuted() = %t, want %t", got, tt.muted)
			}
		})
	}
}

func TestNoiseShiftRegisterPeriod(t *testing.T) {
	tests := []struct {
		name   string
		mode   bool
		period int
	}{
		{"long", false, 32767},
		{"short", true, 93},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := newNoiseChannel()
			nc.mode = tt.mode

			n := 0
			for {
				nc.clockShiftRegister()
				n++
				if nc.shiftReg == 1 || n > 40000 {
					break
				}
			}
			if n != tt.period {
				t.Errorf("sequence length = %d, want %d", n, tt.period)
			}
		})
	}
}

func TestNoisePeriodRegister(t *testing.T) {
	nc := newNoiseChannel()
	nc.WritePERIOD(0, 0x8F)
	if !nc.mode {
		t.Errorf("short mode not set")
	}
	if nc.timer.period != 4067 {
		t.Errorf("timer period = %d, want 4067", nc.timer.period)
	}
}

func TestTriangleLinearCounter(t *testing.T) {
	t.Run("control clear", func(t *testing.T) {
		tc := newTriangleChannel()
		tc.WriteLINEAR(0, 0x05)
		tc.WriteLENGTH(0, 0x00)

		tc.tickEnvelope()
		if tc.linearCounter != 5 {
			t.Fatalf("linear counter = %d, want 5", tc.linearCounter)
		}
		if tc.linearReload {
			t.Errorf("reload flag not cleared")
		}
		tc.tickEnvelope()
		if tc.linearCounter != 4 {
			t.Errorf("linear counter = %d, want 4", tc.linearCounter)
		}
	})
	t.Run("control set", func(t *testing.T) {
		tc := newTriangleChannel()
		tc.WriteLINEAR(0, 0x85)
		tc.WriteLENGTH(0, 0x00)

		for range 3 {
			tc.tickEnvelope()
		}
		if tc.linearCounter != 5 {
			t.Errorf("linear counter = %d, want 5", tc.linearCounter)
		}
		if !tc.lenCounter.halt {
			t.Errorf("control flag must halt the length counter")
		}
	})
}

func TestTriangleSequencer(t *testing.T) {
	tc := newTriangleChannel()
	tc.lenCounter.setEnabled(true)
	tc.WriteLINEAR(0, 0x7F)
	tc.WriteTIMER(0, 0x10)
	tc.WriteLENGTH(0, 0x08)
	tc.tickEnvelope()

	m := newMixer(NewSampleBuffer(44100))
	tc.play(0, 17*4, m)
	if tc.pos != 4 {
		t.Errorf("sequencer position = %d, want 4", tc.pos)
	}

	// Silenced by the linear counter.
	tc.linearCounter = 0
	tc.play(17*4, 17*8, m)
	if tc.pos != 4 {
		t.Errorf("sequencer position = %d, want 4", tc.pos)
	}
}

func TestLengthWriteKeepsPhase(t *testing.T) {
	tc := newTriangleChannel()
	tc.lenCounter.setEnabled(true)
	tc.pos = 9
	tc.WriteLENGTH(0, 0x08)
	if tc.pos != 9 {
		t.Errorf("triangle position = %d after length write, want 9", tc.pos)
	}

	nc := newNoiseChannel()
	nc.env.lenCounter.setEnabled(true)
	nc.shiftReg = 0x1234
	nc.WriteLENGTH(0, 0x08)
	if nc.shiftReg != 0x1234 {
		t.Errorf("noise shift register = %04x after length write, want 1234", nc.shiftReg)
	}
	if got := nc.env.lenCounter.counter; got != 254 {
		t.Errorf("noise length counter = %d, want 254", got)
	}
}
