package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields keep
// unset keys distinguishable from zero values.
type FileConfig struct {
	Device   DeviceFile        `toml:"device"`
	Playback PlaybackFile      `toml:"playback"`
	Phases   map[string]string `toml:"phases"`
	Setup    SetupFile         `toml:"setup"`
	Paths    PathsFile         `toml:"paths"`
}

// DeviceFile maps capture device settings.
type DeviceFile struct {
	Name        *string `toml:"name"`
	FFmpeg      *string `toml:"ffmpeg"`
	InputFormat *string `toml:"input-format"`
	InputDevice *string `toml:"input-device"`
	SampleRate  *int    `toml:"sample-rate"`
	Channels    *int    `toml:"channels"`
}

// PlaybackFile maps reference playback settings.
type PlaybackFile struct {
	Command     *string  `toml:"command"`
	Args        []string `toml:"args"`
	SpeakerFile *string  `toml:"speaker-file"`
	MusicFile   *string  `toml:"music-file"`
}

// SetupFile maps the physical arrangement.
type SetupFile struct {
	OppositeSides *bool    `toml:"opposite-sides"`
	GainPercent   *int     `toml:"gain-percent"`
	MainsHz       *float64 `toml:"mains-hz"`
}

// PathsFile maps output locations.
type PathsFile struct {
	Runs     *string `toml:"runs"`
	History  *string `toml:"history"`
	Settings *string `toml:"settings"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
