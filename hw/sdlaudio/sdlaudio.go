// Package sdlaudio plays the APU output through an SDL2 audio device.
package sdlaudio

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"nesapu/emu/log"
	"nesapu/hw/apu"
)

var _ apu.Sink = (*Sink)(nil)

const (
	AudioFormat     = sdl.AUDIO_S16LSB
	AudioChannels   = 1
	AudioBufferSize = 1024
)

// Sink queues sample blocks on an SDL audio device.
type Sink struct {
	dev  sdl.AudioDeviceID
	rate int
}

// Open initializes the SDL audio subsystem and opens the default output
// device at the given sample rate.
func Open(rate int) (*Sink, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdl audio init: %w", err)
	}

	want := sdl.AudioSpec{
		Freq:     int32(rate),
		Format:   AudioFormat,
		Channels: AudioChannels,
		Samples:  AudioBufferSize,
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("open audio device: %w", err)
	}

	log.ModAudio.InfoZ("audio device opened").
		Int("rate", int(have.Freq)).
		Uint8("channels", have.Channels).
		Uint16("samples", have.Samples).
		End()

	sdl.PauseAudioDevice(dev, false)
	return &Sink{dev: dev, rate: int(have.Freq)}, nil
}

func (s *Sink) SampleRate() int { return s.rate }

// Play queues a copy of samples.
func (s *Sink) Play(samples []int16) {
	if len(samples) == 0 {
		return
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	cpy := make([]byte, len(buf))
	copy(cpy, buf)

	if err := sdl.QueueAudio(s.dev, cpy); err != nil {
		log.ModAudio.WarnZ("failed to queue audio buffer").Error("err", err).End()
	}
}

// Queued returns the duration of audio queued but not played yet.
func (s *Sink) Queued() time.Duration {
	n := sdl.GetQueuedAudioSize(s.dev) / 2
	return time.Duration(n) * time.Second / time.Duration(s.rate)
}

// Wait blocks while more than limit audio is queued.
func (s *Sink) Wait(limit time.Duration) {
	for s.Queued() > limit {
		time.Sleep(time.Millisecond)
	}
}

// Drain blocks until all queued audio has been played.
func (s *Sink) Drain() {
	s.Wait(0)
}

// Close closes the audio device and shuts down the audio subsystem.
func (s *Sink) Close() {
	sdl.CloseAudioDevice(s.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}
