package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"nesapu/emu"
)

func main() {
	args := parseArgs(os.Args[1:])
	if args.mode == versionMode {
		printVersion()
		return
	}

	cfg, err := emu.LoadConfigOrDefault(emu.ConfigPath(args.ConfigPath))
	checkf(err, "failed to load configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args.mode {
	case playMode:
		checkf(playMain(ctx, args.Play, cfg), "failed to play %s", args.Play.Script)
	case renderMode:
		checkf(renderMain(ctx, args.Render, cfg), "failed to render")
	case traceMode:
		checkf(traceMain(ctx, args.Trace, cfg), "failed to trace %s", args.Trace.Script)
	case configMode:
		if !args.DumpConfig.Save {
			checkf(emu.WriteConfig(os.Stdout, cfg), "failed to write configuration")
			return
		}
		path, err := emu.SaveConfig(cfg)
		checkf(err, "failed to save configuration")
		fmt.Println("configuration saved to", path)
	}
}

func printVersion() {
	version := "(devel)"
	goversion := ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" {
			version = bi.Main.Version
		}
		goversion = bi.GoVersion
	}
	fmt.Println("nesapu", version, goversion)
}
