package emu

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nesapu/hw/apu"
	"nesapu/hw/audio"
	"nesapu/hw/hwdefs"
)

type irqEvent struct {
	Cyc uint64
	Src hwdefs.IRQSource
}

type statusEvent struct {
	Cyc uint64
	Val uint8
}

type recordObserver struct {
	irqs   []irqEvent
	status []statusEvent
}

func (o *recordObserver) IRQ(cyc uint64, src hwdefs.IRQSource) {
	o.irqs = append(o.irqs, irqEvent{cyc, src})
}

func (o *recordObserver) StatusRead(cyc uint64, status uint8) {
	o.status = append(o.status, statusEvent{cyc, status})
}

func runScript(t *testing.T, path string) (*Console, *recordObserver) {
	t.Helper()

	s, err := LoadScript(path)
	if err != nil {
		t.Fatal(err)
	}

	c := NewConsole(audio.Null{Rate: 44100})
	obs := &recordObserver{}
	c.SetObserver(obs)
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return c, obs
}

func TestConsoleFrameIRQ(t *testing.T) {
	c, obs := runScript(t, "testdata/irq.toml")

	wantIRQs := []irqEvent{
		{29831, hwdefs.FrameCounter},
		{59661, hwdefs.FrameCounter},
	}
	if diff := cmp.Diff(wantIRQs, obs.irqs); diff != "" {
		t.Errorf("irqs mismatch (-want +got):\n%s", diff)
	}

	wantStatus := []statusEvent{{29832, 0x41}}
	if diff := cmp.Diff(wantStatus, obs.status); diff != "" {
		t.Errorf("status reads mismatch (-want +got):\n%s", diff)
	}

	if c.IRQs() != 2 {
		t.Errorf("irq count = %d, want 2", c.IRQs())
	}
	if c.Clock() != 60000 || c.APU.Cycle() != 60000 {
		t.Errorf("clock = %d, apu cycle = %d, want 60000", c.Clock(), c.APU.Cycle())
	}
}

func TestConsoleSuppressedIRQ(t *testing.T) {
	c, obs := runScript(t, "testdata/suppress.toml")

	if len(obs.irqs) != 0 {
		t.Errorf("got irqs %v, want none", obs.irqs)
	}
	wantStatus := []statusEvent{{29832, 0x00}}
	if diff := cmp.Diff(wantStatus, obs.status); diff != "" {
		t.Errorf("status reads mismatch (-want +got):\n%s", diff)
	}
	if c.IRQs() != 0 {
		t.Errorf("irq count = %d, want 0", c.IRQs())
	}
}

func TestConsoleReadOnIRQCycle(t *testing.T) {
	s := &Script{
		Duration: 30000,
		Ops:      []Op{{Cycle: 29831, Read: addr(0x4015)}},
	}
	c := NewConsole(audio.Null{Rate: 44100})
	obs := &recordObserver{}
	c.SetObserver(obs)
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	// The read samples the status before the irq is raised on that cycle.
	if diff := cmp.Diff([]statusEvent{{29831, 0x00}}, obs.status); diff != "" {
		t.Errorf("status reads mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]irqEvent{{29831, hwdefs.FrameCounter}}, obs.irqs); diff != "" {
		t.Errorf("irqs mismatch (-want +got):\n%s", diff)
	}
	if got := c.Bus.Peek8(0x4015); got != 0x40 {
		t.Errorf("status = %02x, want 40", got)
	}
}

func TestConsoleNeverPassesRequestedCycle(t *testing.T) {
	c := NewConsole(audio.Null{Rate: 44100})

	var late []uint64
	c.APU.SetObserver(func(cyc uint64, ev apu.Event) {
		// Transfers are internal to the APU and not requested.
		if ev != apu.Transfer && cyc != c.Clock() {
			late = append(late, cyc)
		}
	})
	s := &Script{Duration: 200_000}
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(late) != 0 {
		t.Errorf("events not on the console clock: %v", late)
	}
}

func TestConsoleThrottle(t *testing.T) {
	c := NewConsole(audio.Null{Rate: 44100})
	calls := 0
	c.SetThrottle(func() { calls++ })

	if err := c.Run(context.Background(), &Script{Duration: 10 * FrameCycles}); err != nil {
		t.Fatal(err)
	}
	if calls != 10 {
		t.Errorf("throttle called %d times, want 10", calls)
	}
}

func TestConsoleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsole(audio.Null{Rate: 44100})
	err := c.Run(ctx, &Script{Duration: 10 * FrameCycles})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
	if c.Clock() != 0 {
		t.Errorf("clock = %d, want 0", c.Clock())
	}
}

func TestConsolePulse(t *testing.T) {
	s, err := LoadScript("testdata/pulse.toml")
	if err != nil {
		t.Fatal(err)
	}

	rec := audio.NewRecorder(44100)
	c := NewConsole(rec)
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	if rec.Blocks < 5 {
		t.Fatalf("got %d blocks, want at least 5", rec.Blocks)
	}
	if rec.Peak() == 0 {
		t.Errorf("pulse produced only silence")
	}
	// The frame IRQ is never acknowledged by the script, only the length
	// counters are cleared by disabling the channel.
	status := c.Bus.Peek8(0x4015)
	if got := status & 0x0F; got != 0x00 {
		t.Errorf("status = %02x, want no active length counter after disabling", status)
	}
	if status&0x40 == 0 {
		t.Errorf("status = %02x, want frame interrupt flag set", status)
	}
	if got := c.Bus.Peek8(0x4002); got != 0xFD {
		t.Errorf("peek $4002 = %02x, want fd", got)
	}
}
