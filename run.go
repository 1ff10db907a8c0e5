package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"nesapu/emu"
	"nesapu/emu/log"
	"nesapu/hw/apu"
	"nesapu/hw/audio"
	"nesapu/hw/sdlaudio"
)

// Maximum duration of audio queued on the device while playing.
const maxQueued = 100 * time.Millisecond

func newConsole(sink apu.Sink, cfg emu.AudioConfig) *emu.Console {
	if cfg.LowPassHz > 0 {
		sink = audio.NewLowPass(sink, cfg.LowPassHz)
	}
	c := emu.NewConsole(sink)
	cfg.Apply(c.APU.Mixer())
	return c
}

// playMain plays the script on the configured audio backend.
func playMain(ctx context.Context, args Play, cfg emu.Config) error {
	script, err := emu.LoadScript(args.Script)
	if err != nil {
		return err
	}

	if cfg.Audio.Backend == "null" {
		c := newConsole(audio.Null{Rate: cfg.Audio.SampleRate}, cfg.Audio)
		log.AddContext(c)
		defer log.RemoveContext(c)
		return c.Run(ctx, script)
	}

	sdl.Main(func() {
		var sink *sdlaudio.Sink
		sink, err = sdlaudio.Open(cfg.Audio.SampleRate)
		if err != nil {
			return
		}
		defer sink.Close()

		c := newConsole(sink, cfg.Audio)
		c.SetThrottle(func() { sink.Wait(maxQueued) })
		log.AddContext(c)
		defer log.RemoveContext(c)

		if err = c.Run(ctx, script); err != nil {
			return
		}
		sink.Drain()
	})
	return err
}

// renderMain renders all scripts concurrently, each into its own WAV file.
func renderMain(ctx context.Context, args Render, cfg emu.Config) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, path := range args.Scripts {
		g.Go(func() error {
			return render(ctx, path, args.OutDir, cfg.Audio)
		})
	}
	return g.Wait()
}

func render(ctx context.Context, path, outdir string, cfg emu.AudioConfig) (err error) {
	script, err := emu.LoadScript(path)
	if err != nil {
		return err
	}

	outpath := filepath.Join(outdir, script.Name+".wav")
	f, err := os.Create(outpath)
	if err != nil {
		return fmt.Errorf("render %s: %w", script.Name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("render %s: %w", script.Name, cerr)
		}
	}()

	wav := audio.NewWAV(f, cfg.SampleRate)
	c := newConsole(wav, cfg)
	if err := c.Run(ctx, script); err != nil {
		return fmt.Errorf("render %s: %w", script.Name, err)
	}
	if err := wav.Close(); err != nil {
		return fmt.Errorf("render %s: %w", script.Name, err)
	}

	log.ModAudio.InfoZ("rendered").
		String("script", script.Name).
		String("path", outpath).
		Int("samples", wav.Samples()).
		Int("irqs", c.IRQs()).
		End()
	fmt.Printf("%s: %d samples written to %s\n", script.Name, wav.Samples(), outpath)
	return nil
}

// traceMain runs the script without audio output and writes its trace.
func traceMain(ctx context.Context, args Trace, cfg emu.Config) error {
	script, err := emu.LoadScript(args.Script)
	if err != nil {
		return err
	}

	if args.Listen != "" {
		return serveTrace(ctx, script, args.Listen, cfg.Audio)
	}

	out := &outfile{w: os.Stdout, name: "stdout", close: func() error { return nil }}
	if args.Out != nil {
		out = args.Out
	}
	defer out.Close()

	tr := emu.NewTracer(out)
	c := newConsole(tr.Sink(audio.Null{Rate: cfg.Audio.SampleRate}), cfg.Audio)
	tr.Attach(c)
	log.AddContext(c)
	defer log.RemoveContext(c)

	if err := c.Run(ctx, script); err != nil {
		return err
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("write trace to %s: %w", out, err)
	}
	return nil
}

// serveTrace serves the script trace over websocket until ctx is canceled.
func serveTrace(ctx context.Context, script *emu.Script, hostport string, cfg emu.AudioConfig) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", emu.TraceHandler(script, cfg.SampleRate))

	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return err
	}

	server := http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.ModEmu.InfoZ("trace server listening").String("addr", ln.Addr().String()).End()
	fmt.Printf("serving %s trace on ws://%s/ws\n", script.Name, ln.Addr())
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
