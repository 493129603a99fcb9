// Package report renders calibration results as text, markdown, HTML,
// YAML summaries and spectrum CSV files.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/linuxmatters/mictune/internal/advice"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// Data is everything a report needs for one run.
type Data struct {
	Run         *calibration.Run
	Verdict     calibration.Verdict
	Advice      advice.Set
	Spectra     map[calibration.Phase]metrics.Spectrum
	MainsHz     float64
	GeneratedAt time.Time
}

// Build evaluates a run and gathers its report data.
func Build(run *calibration.Run, prior []*calibration.Run, now time.Time) (Data, error) {
	verdict, err := calibration.Evaluate(run)
	if err != nil {
		return Data{}, fmt.Errorf("evaluate run: %w", err)
	}
	set, err := advice.Recommend(run, prior)
	if err != nil {
		return Data{}, fmt.Errorf("recommend: %w", err)
	}
	return Data{Run: run, Verdict: verdict, Advice: set, GeneratedAt: now}, nil
}

// writeSection writes a section header with title and dashed underline.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// WriteText writes the plain-text report shown after a session.
func WriteText(w io.Writer, data Data) {
	fmt.Fprintf(w, "Calibration Run %d\n", data.Run.ID)
	fmt.Fprintln(w, strings.Repeat("=", len(fmt.Sprintf("Calibration Run %d", data.Run.ID))))
	if data.Run.Setup.DeviceName != "" {
		fmt.Fprintf(w, "Device: %s\n", data.Run.Setup.DeviceName)
	}
	fmt.Fprintf(w, "Recorded: %s\n", data.Run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if data.MainsHz > 0 {
		fmt.Fprintf(w, "Mains: %.0f Hz\n", data.MainsHz)
	}
	fmt.Fprintln(w)

	writeSection(w, "Measurements")
	fmt.Fprint(w, MeasurementTable(data.Run).String())
	if missing := data.Run.Missing(); len(missing) > 0 {
		fmt.Fprintf(w, "Not measured: %s\n", phaseList(missing))
	}
	fmt.Fprintln(w)

	if len(data.Advice.Trends) > 0 {
		writeSection(w, fmt.Sprintf("Compared with Run %d", data.Advice.PriorRunID))
		fmt.Fprint(w, ComparisonTable(data.Advice.Trends).String())
		fmt.Fprintln(w)
	}

	writeSection(w, "Success Criteria")
	for _, c := range data.Verdict.Criteria {
		fmt.Fprintf(w, "  [%-4s] %-16s %-14s target %s\n", statusMark(c.Status), c.Title, formatMeasured(c), c.Target)
	}
	if data.Verdict.Passed {
		fmt.Fprintln(w, "  All criteria passed.")
	} else {
		fmt.Fprintf(w, "  %d of %d criteria passed.\n", data.Verdict.Count(calibration.Pass), len(data.Verdict.Criteria))
	}
	fmt.Fprintln(w)

	writeSection(w, "Recommendations")
	if len(data.Advice.Advisories) == 0 {
		fmt.Fprintln(w, "  No adjustments needed.")
	}
	for _, a := range data.Advice.Advisories {
		fmt.Fprintf(w, "  - %s\n", wrapText(a.Message, 72, "    "))
	}
	fmt.Fprintln(w)

	writeSection(w, "Pattern and Positioning")
	fmt.Fprintf(w, "  Pattern:   %s\n", data.Advice.Pattern.Pattern)
	fmt.Fprintf(w, "             %s\n", wrapText(data.Advice.Pattern.Reasoning, 64, "             "))
	fmt.Fprintf(w, "  Distance:  %s\n", data.Advice.Positioning.Distance())
	fmt.Fprintf(w, "  Angle:     %s\n", data.Advice.Positioning.Angle)
	fmt.Fprintf(w, "  Placement: %s\n", data.Advice.Positioning.Placement)
}

func phaseList(phases []calibration.Phase) string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.Title()
	}
	return strings.Join(names, ", ")
}

func statusMark(s calibration.Status) string {
	switch s {
	case calibration.Pass:
		return "PASS"
	case calibration.Fail:
		return "FAIL"
	default:
		return "N/A"
	}
}

// MeasurementTable builds the per-phase metric table, one column per phase.
// Phases without a result show as missing.
func MeasurementTable(run *calibration.Run) *MetricTable {
	headers := make([]string, len(calibration.Phases))
	results := make([]calibration.PhaseResult, len(calibration.Phases))
	present := make([]bool, len(calibration.Phases))
	for i, p := range calibration.Phases {
		headers[i] = p.String()
		results[i], present[i] = run.Latest(p)
	}

	row := func(value func(calibration.PhaseResult) string) []string {
		values := make([]string, len(results))
		for i, r := range results {
			if present[i] {
				values[i] = value(r)
			}
		}
		return values
	}

	t := NewMetricTable(headers...)
	t.AddRow("RMS", row(func(r calibration.PhaseResult) string { return formatDBFS(r.RMSDBFS) }), "dBFS", "")
	t.AddRow("Peak", row(func(r calibration.PhaseResult) string { return formatDBFS(r.PeakDBFS) }), "dBFS", "")
	t.AddRow("SNR", row(func(r calibration.PhaseResult) string { return formatOptional(r.SNRDB, 1) }), "dB", "")
	t.AddRow("Dominance", row(func(r calibration.PhaseResult) string { return formatOptional(r.Dominance, 1) }), "x", "")
	t.AddRow("Music", row(func(r calibration.PhaseResult) string { return formatPercent(r.MusicRatio) }), "", "of voice")
	t.AddRow("Speech band", row(func(r calibration.PhaseResult) string { return fmt.Sprintf("%.0f%%", r.SpeechBandRatio*100) }), "", "300-3k Hz")
	t.AddRow("Hum", row(func(r calibration.PhaseResult) string { return formatPercent(r.HumRatio) }), "", "")
	t.AddRow("Band", row(func(r calibration.PhaseResult) string { return r.DominantBand.Name }), "", "")
	return t
}

// ComparisonTable builds a Previous/Current/Change table from deltas.
func ComparisonTable(deltas []calibration.Delta) *MetricTable {
	t := NewMetricTable("Previous", "Current", "Change")
	for _, d := range deltas {
		change := formatSigned(d.Change(), 1)
		if d.Unit == "ratio" {
			change = formatSigned(d.Change()*100, 0) + "%"
		}
		t.AddRow(d.Metric, []string{formatDelta(d, d.Previous), formatDelta(d, d.Current), change}, "", d.Direction.String())
	}
	return t
}
