package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"nesapu/emu/log"
	"nesapu/hw/apu"
)

// DefaultConfigFile is the name of the configuration file looked up in the
// working directory, then in the user configuration directory.
const DefaultConfigFile = "nesapu.toml"

// ConfigDir returns the nesapu directory under the user configuration
// directory. It is not created.
func ConfigDir() string {
	return configdir.LocalConfig("nesapu")
}

// ConfigPath resolves the configuration file to load. An explicit path is
// returned as is. Otherwise DefaultConfigFile in the working directory takes
// precedence over the one in ConfigDir.
func ConfigPath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}

type Config struct {
	Audio AudioConfig `toml:"audio"`
}

type AudioConfig struct {
	SampleRate int          `toml:"sample_rate"`
	Backend    string       `toml:"backend"`
	LowPassHz  float64      `toml:"lowpass_hz"`
	Volume     float64      `toml:"volume"`
	Channels   ChannelGains `toml:"channels"`
}

// ChannelGains holds the mixer gain of each APU channel.
type ChannelGains struct {
	Square1  float64 `toml:"square1"`
	Square2  float64 `toml:"square2"`
	Triangle float64 `toml:"triangle"`
	Noise    float64 `toml:"noise"`
	DMC      float64 `toml:"dmc"`
}

const (
	minSampleRate = 8000
	maxSampleRate = 96000
)

var backends = []string{"sdl", "null"}

func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Backend:    "sdl",
			LowPassHz:  14000,
			Volume:     1.0,
			Channels: ChannelGains{
				Square1:  1.0,
				Square2:  1.0,
				Triangle: 1.0,
				Noise:    1.0,
				DMC:      1.0,
			},
		},
	}
}

// LoadConfigOrDefault loads the configuration at path over the default one.
// A missing file is not an error.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	for _, key := range md.Undecoded() {
		log.ModEmu.Warnf("config %s: unknown key %q", path, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values, fixing the ones that can be.
func (cfg *Config) Validate() error {
	ac := &cfg.Audio
	if ac.SampleRate < minSampleRate || ac.SampleRate > maxSampleRate {
		return fmt.Errorf("audio.sample_rate %d out of range [%d, %d]", ac.SampleRate, minSampleRate, maxSampleRate)
	}
	if !slices.Contains(backends, ac.Backend) {
		return fmt.Errorf("audio.backend %q: must be one of %q", ac.Backend, backends)
	}
	if ac.LowPassHz < 0 {
		return fmt.Errorf("audio.lowpass_hz %g: must be positive", ac.LowPassHz)
	}
	if nyquist := float64(ac.SampleRate) / 2; ac.LowPassHz >= nyquist {
		log.ModEmu.Warnf("audio.lowpass_hz %g above Nyquist frequency, filter disabled", ac.LowPassHz)
		ac.LowPassHz = 0
	}
	if ac.Volume < 0 {
		log.ModEmu.Warnf("audio.volume %g clamped to 0", ac.Volume)
		ac.Volume = 0
	}
	for ch, gain := range ac.Channels.gains() {
		if *gain < 0 {
			log.ModEmu.Warnf("audio.channels.%s gain %g clamped to 0", ch, *gain)
			*gain = 0
		}
	}
	return nil
}

func (cg *ChannelGains) gains() map[apu.Channel]*float64 {
	return map[apu.Channel]*float64{
		apu.Square1:  &cg.Square1,
		apu.Square2:  &cg.Square2,
		apu.Triangle: &cg.Triangle,
		apu.Noise:    &cg.Noise,
		apu.DMC:      &cg.DMC,
	}
}

// Apply sets the mixer volumes.
func (ac AudioConfig) Apply(m *apu.Mixer) {
	m.SetMasterVolume(ac.Volume)
	for ch, gain := range ac.Channels.gains() {
		m.SetVolume(ch, *gain)
	}
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// SaveConfig writes cfg into ConfigDir, creating it if needed, and returns
// the path of the written file.
func SaveConfig(cfg Config) (string, error) {
	dir := ConfigDir()
	if err := configdir.MakePath(dir); err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}
	if err := WriteConfig(f, cfg); err != nil {
		f.Close()
		return "", fmt.Errorf("save config: %w", err)
	}
	return path, f.Close()
}
