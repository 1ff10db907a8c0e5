package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"nesapu/emu/log"
)

const (
	bitDepth  = 16
	pcmFormat = 1
)

// WAV encodes the samples it receives as a 16-bit mono PCM wave file.
// Play cannot fail, the first encoding error is kept and reported by Close.
type WAV struct {
	rate int
	enc  *wav.Encoder
	buf  goaudio.IntBuffer
	n    int
	err  error
}

// NewWAV returns a sink writing to ws. Close must be called to finalize the
// file header.
func NewWAV(ws io.WriteSeeker, rate int) *WAV {
	return &WAV{
		rate: rate,
		enc:  wav.NewEncoder(ws, rate, bitDepth, 1, pcmFormat),
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
			SourceBitDepth: bitDepth,
		},
	}
}

func (w *WAV) SampleRate() int { return w.rate }

func (w *WAV) Play(samples []int16) {
	if w.err != nil || len(samples) == 0 {
		return
	}

	w.buf.Data = w.buf.Data[:0]
	for _, s := range samples {
		w.buf.Data = append(w.buf.Data, int(s))
	}
	if err := w.enc.Write(&w.buf); err != nil {
		w.err = fmt.Errorf("wav: write samples: %w", err)
		log.ModAudio.ErrorZ("wav encoding failed").Error("err", err).End()
		return
	}
	w.n += len(samples)
}

// Samples returns the number of samples written so far.
func (w *WAV) Samples() int { return w.n }

// Close finalizes the wave file. It does not close the underlying writer.
func (w *WAV) Close() error {
	if err := w.enc.Close(); err != nil && w.err == nil {
		w.err = fmt.Errorf("wav: close: %w", err)
	}
	return w.err
}
