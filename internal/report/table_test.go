package report

import (
	"math"
	"strings"
	"testing"

	"github.com/linuxmatters/mictune/internal/calibration"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"negative", -16.5, 1, "-16.5"},
		{"rounds", 3.14159, 2, "3.14"},
		{"nan", math.NaN(), 2, MissingValue},
		{"inf", math.Inf(-1), 1, MissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetric(tt.value, tt.decimals); got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatDBFS(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-96.0, SilentValue},
		{-120.0, SilentValue},
		{-60.04, "-60.0"},
		{0, "0.0"},
	}
	for _, tt := range tests {
		if got := formatDBFS(tt.value); got != tt.want {
			t.Errorf("formatDBFS(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatOptional(t *testing.T) {
	if got := formatOptional(calibration.None(), 1); got != MissingValue {
		t.Errorf("formatOptional(None) = %q, want %q", got, MissingValue)
	}
	if got := formatOptional(calibration.Some(0), 1); got != "0.0" {
		t.Errorf("formatOptional(Some(0)) = %q, want %q", got, "0.0")
	}
	if got := formatPercent(calibration.Some(0.125)); got != "12%" && got != "13%" {
		t.Errorf("formatPercent(0.125) = %q", got)
	}
	if got := formatSigned(2.5, 1); got != "+2.5" {
		t.Errorf("formatSigned(2.5) = %q", got)
	}
}

func TestMetricTableString(t *testing.T) {
	table := NewMetricTable("Previous", "Current")
	table.AddRow("Noise floor", []string{"-58.0", "-62.0"}, "dBFS", "improved")
	table.AddRow("SNR", []string{"", "25.0"}, "dB", "")

	got := table.String()
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "Previous") || !strings.HasSuffix(lines[0], "Interpretation") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Noise floor  ") || !strings.HasSuffix(lines[1], "improved") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.Contains(lines[2], " - ") {
		t.Errorf("missing value not rendered as %q: %q", MissingValue, lines[2])
	}
	// Columns line up across rows.
	if strings.Index(lines[1], "dBFS") != strings.Index(lines[2], "dB") {
		t.Errorf("unit columns misaligned:\n%s", got)
	}

	empty := NewMetricTable("A")
	if empty.String() != "" {
		t.Errorf("empty table should render as empty string")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		indent   string
		want     string
	}{
		{"short", "Hello world", 20, "  ", "Hello world"},
		{"wraps", "Move the mic closer to your mouth for a stronger signal", 30, "  ", "Move the mic closer to your\n  mouth for a stronger signal"},
		{"long_word", "supercalifragilisticexpialidocious", 10, "  ", "supercalifragilisticexpialidocious"},
		{"empty", "", 20, "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.maxWidth, tt.indent); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}
