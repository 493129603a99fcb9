package report

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linuxmatters/mictune/internal/advice"
	"github.com/linuxmatters/mictune/internal/calibration"
)

// Summary is the machine-readable form of a report.
type Summary struct {
	RunID       int                       `yaml:"run_id"`
	CreatedAt   time.Time                 `yaml:"created_at"`
	Setup       calibration.Setup         `yaml:"setup"`
	MainsHz     float64                   `yaml:"mains_hz,omitempty"`
	Results     []calibration.PhaseResult `yaml:"results"`
	Verdict     calibration.Verdict       `yaml:"verdict"`
	Advisories  []advice.Advisory         `yaml:"advisories"`
	Pattern     advice.PatternChoice      `yaml:"pattern"`
	Positioning advice.Positioning        `yaml:"positioning"`
	Trends      []calibration.Delta       `yaml:"trends,omitempty"`
}

// NewSummary flattens report data into a Summary.
func NewSummary(data Data) Summary {
	return Summary{
		RunID:       data.Run.ID,
		CreatedAt:   data.Run.CreatedAt,
		Setup:       data.Run.Setup,
		MainsHz:     data.MainsHz,
		Results:     data.Run.Results(),
		Verdict:     data.Verdict,
		Advisories:  data.Advice.Advisories,
		Pattern:     data.Advice.Pattern,
		Positioning: data.Advice.Positioning,
		Trends:      data.Advice.Trends,
	}
}

// YAML encodes the summary for a run.
func YAML(data Data) ([]byte, error) {
	out, err := yaml.Marshal(NewSummary(data))
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return out, nil
}
