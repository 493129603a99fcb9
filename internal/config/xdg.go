// Package config provides XDG paths, TOML configuration and the exported
// device settings file.
package config

import (
	"os"
	"path/filepath"
)

const appName = "mictune"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultHistoryPath returns the default path for the SQLite run history.
func DefaultHistoryPath() string {
	return filepath.Join(XDGDataHome(), appName, "history.db")
}

// DefaultRunsDir returns the directory holding per-run reports and recordings.
func DefaultRunsDir() string {
	return filepath.Join(XDGDataHome(), appName, "runs")
}

// DefaultSettingsPath returns where the final device settings are exported.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigHome(), "audio_calibration.json")
}
