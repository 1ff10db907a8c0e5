package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nesapu/emu/log"
)

type mode byte

const (
	playMode    mode = iota // Play a script on the audio device
	renderMode              // Render scripts to WAV files
	traceMode               // Write a JSON event trace
	configMode              // Print the effective configuration
	versionMode             // Show nesapu version
)

type (
	CLI struct {
		Play       Play       `cmd:"" help:"Play a register script on the audio device."`
		Render     Render     `cmd:"" help:"Render register scripts to WAV files."`
		Trace      Trace      `cmd:"" help:"Write a JSON lines trace of the APU events."`
		DumpConfig DumpConfig `cmd:"" help:"Print the effective configuration." name:"dump-config"`
		Version    Version    `cmd:"" help:"Show nesapu version."`

		Log        logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		ConfigPath string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Play struct {
		Script string `arg:"" name:"/path/to/script" help:"${script_help}" type:"existingfile"`
	}

	Render struct {
		Scripts []string `arg:"" name:"/path/to/script" help:"${script_help}" type:"existingfile"`
		OutDir  string   `name:"out-dir" help:"Directory of the WAV files, named after the scripts." default:"." type:"existingdir"`
	}

	Trace struct {
		Script string   `arg:"" name:"/path/to/script" help:"${script_help}" type:"existingfile"`
		Out    *outfile `name:"out" help:"Write trace to file (default: stdout)." placeholder:"FILE|stdout|stderr" xor:"out"`
		Listen string   `name:"listen" help:"Stream the trace to websocket clients connecting to ws://HOST:PORT/ws." placeholder:"HOST:PORT" xor:"out"`
	}

	DumpConfig struct {
		Save bool `name:"save" help:"Save the configuration in the user configuration directory."`
	}
	Version    struct{}
)

var vars = kong.Vars{
	"script_help":    "TOML register script.",
	"log_help":       "Enable logging for specified modules.",
	"config_help":    "Configuration file (default: ./nesapu.toml, then the user configuration directory).",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nesapu"),
		kong.Description("NES APU emulator, plays and renders register scripts."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "play":
		cfg.mode = playMode
	case "render":
		cfg.mode = renderMode
	case "trace":
		cfg.mode = traceMode
	case "dump-config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}

	const loggingHelp = `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf("%s.\n\t%s", fmt.Sprintf(format, args...), err)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
