package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/linuxmatters/mictune/internal/calibration"
)

// Config is the resolved configuration with defaults applied.
type Config struct {
	Device    Device
	Playback  Playback
	Durations map[calibration.Phase]time.Duration
	Setup     Setup
	Paths     Paths
}

// Device describes the capture input handed to ffmpeg.
type Device struct {
	Name        string
	FFmpeg      string
	InputFormat string
	InputDevice string
	SampleRate  int
	Channels    int
}

// Playback describes how reference audio is played.
type Playback struct {
	Command     string
	Args        []string
	SpeakerFile string
	MusicFile   string
}

// Setup describes the room arrangement.
type Setup struct {
	OppositeSides bool
	GainPercent   int
	// MainsHz is nil for automatic detection and 0 to disable hum checks.
	MainsHz *float64
}

// Paths are the output locations.
type Paths struct {
	Runs     string
	History  string
	Settings string
}

// Default returns the built-in configuration for the current platform.
func Default() Config {
	return defaultFor(runtime.GOOS)
}

func defaultFor(goos string) Config {
	cfg := Config{
		Device: Device{
			FFmpeg:     "ffmpeg",
			SampleRate: 48000,
			Channels:   1,
		},
		Durations: make(map[calibration.Phase]time.Duration, len(calibration.Phases)),
		Setup:     Setup{GainPercent: calibration.DefaultGainPercent},
		Paths: Paths{
			Runs:     DefaultRunsDir(),
			History:  DefaultHistoryPath(),
			Settings: DefaultSettingsPath(),
		},
	}
	for _, p := range calibration.Phases {
		cfg.Durations[p] = p.Duration()
	}

	switch goos {
	case "darwin":
		cfg.Device.InputFormat = "avfoundation"
		cfg.Device.InputDevice = ":default"
		cfg.Playback.Command = "afplay"
	case "windows":
		cfg.Device.InputFormat = "dshow"
		cfg.Device.InputDevice = "audio=default"
		cfg.Playback.Command = "ffplay"
		cfg.Playback.Args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	default:
		cfg.Device.InputFormat = "pulse"
		cfg.Device.InputDevice = "default"
		cfg.Playback.Command = "ffplay"
		cfg.Playback.Args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	}
	return cfg
}

// Load reads the config file at path and applies it over the defaults.
func Load(path string) (Config, error) {
	file, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	return Resolve(Default(), file)
}

// Resolve applies set file values over base.
func Resolve(base Config, file FileConfig) (Config, error) {
	cfg := base
	cfg.Durations = make(map[calibration.Phase]time.Duration, len(base.Durations))
	for p, d := range base.Durations {
		cfg.Durations[p] = d
	}

	setString(&cfg.Device.Name, file.Device.Name)
	setString(&cfg.Device.FFmpeg, file.Device.FFmpeg)
	setString(&cfg.Device.InputFormat, file.Device.InputFormat)
	setString(&cfg.Device.InputDevice, file.Device.InputDevice)
	setInt(&cfg.Device.SampleRate, file.Device.SampleRate)
	setInt(&cfg.Device.Channels, file.Device.Channels)

	setString(&cfg.Playback.Command, file.Playback.Command)
	if file.Playback.Args != nil {
		cfg.Playback.Args = append([]string(nil), file.Playback.Args...)
	}
	setString(&cfg.Playback.SpeakerFile, file.Playback.SpeakerFile)
	setString(&cfg.Playback.MusicFile, file.Playback.MusicFile)

	for name, value := range file.Phases {
		phase, err := calibration.ParsePhase(name)
		if err != nil {
			return Config{}, fmt.Errorf("phases: %w", err)
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("phases.%s: %w", name, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("phases.%s: duration must be positive", name)
		}
		cfg.Durations[phase] = d
	}

	if file.Setup.OppositeSides != nil {
		cfg.Setup.OppositeSides = *file.Setup.OppositeSides
	}
	setInt(&cfg.Setup.GainPercent, file.Setup.GainPercent)
	if file.Setup.MainsHz != nil {
		hz := *file.Setup.MainsHz
		cfg.Setup.MainsHz = &hz
	}

	setString(&cfg.Paths.Runs, file.Paths.Runs)
	setString(&cfg.Paths.History, file.Paths.History)
	setString(&cfg.Paths.Settings, file.Paths.Settings)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Device.SampleRate <= 0 {
		return fmt.Errorf("device.sample-rate must be positive, got %d", c.Device.SampleRate)
	}
	if c.Device.Channels != 1 {
		return fmt.Errorf("device.channels must be 1, capture is mono, got %d", c.Device.Channels)
	}
	if c.Setup.GainPercent < 0 || c.Setup.GainPercent > 100 {
		return fmt.Errorf("setup.gain-percent must be 0-100, got %d", c.Setup.GainPercent)
	}
	if hz := c.Setup.MainsHz; hz != nil && *hz != 0 && *hz != 50 && *hz != 60 {
		return fmt.Errorf("setup.mains-hz must be 0, 50 or 60, got %g", *hz)
	}
	return nil
}

// Duration returns the recording length configured for a phase.
func (c Config) Duration(p calibration.Phase) time.Duration {
	if d, ok := c.Durations[p]; ok {
		return d
	}
	return p.Duration()
}

// PlaybackFile returns the reference file played during a phase, "" for
// phases without playback.
func (c Config) PlaybackFile(p calibration.Phase) string {
	switch {
	case p.NeedsPlayback():
		return c.Playback.SpeakerFile
	case p == calibration.VoiceSpeakerMusic:
		return c.Playback.MusicFile
	default:
		return ""
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
