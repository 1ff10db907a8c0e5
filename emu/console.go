package emu

import (
	"context"

	"nesapu/emu/log"
	"nesapu/hw/apu"
	"nesapu/hw/hwdefs"
)

// FrameCycles is the number of CPU cycles in an NTSC video frame.
const FrameCycles = 29781

// Observer is notified of the interrupts and status reads happening while a
// script runs.
type Observer interface {
	IRQ(cyc uint64, src hwdefs.IRQSource)
	StatusRead(cyc uint64, status uint8)
}

// Console plays the CPU role for the APU: it owns the CPU clock, performs
// the bus accesses of scripts and runs the APU as often as it requests.
type Console struct {
	APU *apu.APU
	Bus *Bus

	clock    uint64
	irqs     int
	obs      Observer
	throttle func()
}

func NewConsole(sink apu.Sink) *Console {
	c := &Console{APU: apu.New(sink)}
	c.Bus = NewBus(c.APU, c.Clock, c.raise)
	return c
}

// Clock returns the current CPU cycle.
func (c *Console) Clock() uint64 { return c.clock }

// IRQs returns the number of interrupts raised so far.
func (c *Console) IRQs() int { return c.irqs }

func (c *Console) SetObserver(obs Observer) { c.obs = obs }

// SetThrottle sets a function called after each frame worth of emulated
// cycles, to pace the emulation on a real time audio device.
func (c *Console) SetThrottle(fn func()) { c.throttle = fn }

func (c *Console) AddLogContext(z *log.EntryZ) {
	z.Uint64("cyc", c.clock)
}

// Run runs the script from the current clock. Op cycles are relative to
// the clock at the time Run is called.
func (c *Console) Run(ctx context.Context, s *Script) error {
	log.ModEmu.InfoZ("running script").
		String("name", s.Name).
		Uint64("duration", s.Duration).
		Int("ops", len(s.Ops)).
		End()

	base := c.clock
	for _, op := range s.Ops {
		cyc := base + op.Cycle

		var err error
		if op.IsWrite() {
			err = c.run(ctx, cyc)
		} else {
			// A status read runs the APU over its last cycle by itself.
			err = c.run(ctx, max(cyc, 1)-1)
		}
		if err != nil {
			return err
		}

		c.clock = max(c.clock, cyc)
		c.exec(op)
	}
	if err := c.run(ctx, base+s.Duration); err != nil {
		return err
	}

	log.ModEmu.InfoZ("script done").
		String("name", s.Name).
		Int("irqs", c.irqs).
		End()
	return nil
}

// run advances the clock to target, one frame at a time.
func (c *Console) run(ctx context.Context, target uint64) error {
	for c.clock < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.advance(min(c.clock+FrameCycles, target))
		if c.throttle != nil {
			c.throttle()
		}
	}
	return nil
}

// advance runs the APU up to target, never letting the clock go past the
// cycle requested by the APU.
func (c *Console) advance(target uint64) {
	for {
		next := c.APU.RequestedRunCycle()
		if next > target {
			break
		}
		c.clock = next
		c.raise(c.APU.RunTo(next))
	}
	c.clock = target
	c.raise(c.APU.RunTo(target))
}

func (c *Console) exec(op Op) {
	log.ModScript.DebugZ("exec").Stringer("op", op).End()

	if op.IsWrite() {
		c.Bus.Write8(op.Addr(), op.Value)
		return
	}

	val := c.Bus.Read8(op.Addr(), false)
	if c.obs != nil {
		c.obs.StatusRead(c.clock, val)
	}
}

func (c *Console) raise(src hwdefs.IRQSource) {
	if src == 0 {
		return
	}

	c.irqs++
	log.ModEmu.DebugZ("irq").Stringer("src", src).End()
	if c.obs != nil {
		c.obs.IRQ(c.clock, src)
	}
}
