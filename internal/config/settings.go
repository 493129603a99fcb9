package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linuxmatters/mictune/internal/calibration"
)

// WriteSettings writes the final device settings as indented JSON.
func WriteSettings(path string, s calibration.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ReadSettings reads a previously exported settings file.
func ReadSettings(path string) (calibration.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return calibration.Settings{}, err
	}
	var s calibration.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return calibration.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}
