package apu

// envelope generates a constant volume or a saw envelope with optional loop.
// The loop flag is shared with the length counter halt flag.
type envelope struct {
	constantVolume bool
	volume         uint8

	start   bool
	divider int8
	counter uint8

	lenCounter lengthCounter
}

// init decodes the $4000/$4004/$400C register layout: --LC VVVV.
func (env *envelope) init(regValue uint8) {
	env.lenCounter.halt = (regValue & 0x20) == 0x20
	env.constantVolume = (regValue & 0x10) == 0x10
	env.volume = regValue & 0x0F
}

func (env *envelope) restart() {
	env.start = true
}

func (env *envelope) output() uint8 {
	if !env.lenCounter.active() {
		return 0
	}
	if env.constantVolume {
		return env.volume
	}
	return env.counter
}

func (env *envelope) tick() {
	if env.start {
		env.start = false
		env.counter = 15
		env.divider = int8(env.volume)
		return
	}

	env.divider--
	if env.divider < 0 {
		env.divider = int8(env.volume)
		if env.counter > 0 {
			env.counter--
		} else if env.lenCounter.halt {
			env.counter = 15
		}
	}
}
