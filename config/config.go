// SPDX-License-Identifier: EPL-2.0

// Package config loads engine settings from a YAML file and AUDMIX_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kkyr/fig"
)

// EnvPrefix prefixes environment overrides, for example
// AUDMIX_AUDIO_SAMPLE_RATE=48000.
const EnvPrefix = "AUDMIX"

type Config struct {
	Audio      Audio      `fig:"audio"`
	Log        Log        `fig:"log"`
	Monitoring Monitoring `fig:"monitoring"`
}

type Audio struct {
	SampleRate    int     `fig:"sample_rate" default:"44100"`
	Channels      int     `fig:"channels" default:"2"`
	BlockFrames   int     `fig:"block_frames" default:"512"`
	SegmentFrames int     `fig:"segment_frames" default:"4096"`
	MaxVoices     int     `fig:"max_voices" default:"64"`
	MasterVolume  float64 `fig:"master_volume" default:"1"`
	BufferLimit   int64   `fig:"buffer_limit" default:"1073741824"`
}

type Log struct {
	Debug   bool `fig:"debug"`
	Console bool `fig:"console"`
	NoColor bool `fig:"no_color"`
}

type Monitoring struct {
	// MetricsAddr enables the prometheus endpoint when set, e.g. ":9100".
	MetricsAddr string `fig:"metrics_addr"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Audio: Audio{
			SampleRate:    44100,
			Channels:      2,
			BlockFrames:   512,
			SegmentFrames: 4096,
			MaxVoices:     64,
			MasterVolume:  1,
			BufferLimit:   1 << 30,
		},
	}
}

// Load reads path, applies environment overrides and validates the result.
// With an empty path only defaults and the environment are used.
func Load(path string) (*Config, error) {
	var cfg Config

	opts := []fig.Option{fig.UseEnv(EnvPrefix)}
	if path == "" {
		opts = append(opts, fig.IgnoreFile())
	} else {
		opts = append(opts, fig.File(filepath.Base(path)), fig.Dirs(filepath.Dir(path)))
	}

	if err := fig.Load(&cfg, opts...); err != nil {
		return nil, fmt.Errorf("config: load %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	a := c.Audio

	if a.SampleRate < 8000 || a.SampleRate > 384000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [8000, 384000]", a.SampleRate))
	}
	if a.Channels < 1 || a.Channels > 8 {
		errs = append(errs, fmt.Errorf("audio.channels %d is out of range [1, 8]", a.Channels))
	}
	if a.BlockFrames <= 0 {
		errs = append(errs, fmt.Errorf("audio.block_frames %d must be positive", a.BlockFrames))
	}
	if a.SegmentFrames <= 0 {
		errs = append(errs, fmt.Errorf("audio.segment_frames %d must be positive", a.SegmentFrames))
	}
	if a.MaxVoices <= 0 {
		errs = append(errs, fmt.Errorf("audio.max_voices %d must be positive", a.MaxVoices))
	}
	if a.MasterVolume < 0 || a.MasterVolume > 1 {
		errs = append(errs, fmt.Errorf("audio.master_volume %.2f is out of range [0, 1]", a.MasterVolume))
	}
	if a.BufferLimit <= 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_limit %d must be positive", a.BufferLimit))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
