package hwdefs

import "testing"

func TestIRQSourceString(t *testing.T) {
	tests := []struct {
		irq  IRQSource
		want string
	}{
		{0, "none"},
		{FrameCounter, "fcnt"},
		{FrameCounter | DMC, "fcnt|dmc"},
		{External | FrameCounter | DMC, "ext|fcnt|dmc"},
	}
	for _, tt := range tests {
		if got := tt.irq.String(); got != tt.want {
			t.Errorf("IRQSource(%d).String() = %q, want %q", uint8(tt.irq), got, tt.want)
		}
	}
}

func TestIRQSourceHas(t *testing.T) {
	irq := FrameCounter | External
	if !irq.Has(FrameCounter) {
		t.Errorf("%v.Has(FrameCounter) = false", irq)
	}
	if irq.Has(DMC) {
		t.Errorf("%v.Has(DMC) = true", irq)
	}
	if irq.Has(0) {
		t.Errorf("%v.Has(0) = true", irq)
	}
}
