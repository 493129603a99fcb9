package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// MetricRow is a single row in a plain-text table.
// Values are pre-formatted so rows can mix precisions.
type MetricRow struct {
	Label          string   // Row label, e.g. "RMS"
	Values         []string // One value per column
	Unit           string   // Unit suffix, "" for unitless
	Interpretation string   // Optional, only shown when some row has one
}

// MetricTable formats aligned columns, one per phase or run.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable creates a table with the given column headers.
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{Headers: headers}
}

// AddRow adds a row with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// String renders the table. Labels are left-aligned, values right-aligned,
// units follow the last value column.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
			break
		}
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	unitWidth := 0
	for _, row := range t.Rows {
		if len(row.Unit) > unitWidth {
			unitWidth = len(row.Unit)
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := 0; i < len(t.Headers); i++ {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}
		if unitWidth > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitWidth, row.Unit))
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for phases or metrics that were not measured.
const MissingValue = "-"

// SilentValue marks a level at the dBFS floor.
const SilentValue = "silent"

// formatMetric formats a value to the given decimals, NaN and Inf as missing.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatDBFS shows levels at the floor as silent rather than -96.0.
func formatDBFS(value float64) string {
	if value <= metrics.FloorDBFS {
		return SilentValue
	}
	return formatMetric(value, 1)
}

// formatOptional formats a measured value or MissingValue.
func formatOptional(o calibration.Optional, decimals int) string {
	v, ok := o.Get()
	if !ok {
		return MissingValue
	}
	return formatMetric(v, decimals)
}

// formatPercent formats a ratio as a whole percentage.
func formatPercent(o calibration.Optional) string {
	v, ok := o.Get()
	if !ok {
		return MissingValue
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

// formatSigned shows an explicit sign, e.g. "+2.5".
func formatSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, value)
}

// formatMeasured renders a criterion's measured value with its unit.
func formatMeasured(c calibration.Criterion) string {
	v, ok := c.Measured.Get()
	if !ok {
		return "not measured"
	}
	switch c.Name {
	case calibration.CriterionNoiseFloor, calibration.CriterionClipping:
		return formatDBFS(v) + unitSuffix(v, " dBFS")
	case calibration.CriterionDominance:
		return formatMetric(v, 1) + "x"
	case calibration.CriterionMusicLevel:
		return fmt.Sprintf("%.0f%%", v*100)
	default:
		return formatMetric(v, 1) + " dB"
	}
}

func unitSuffix(v float64, unit string) string {
	if v <= metrics.FloorDBFS {
		return ""
	}
	return unit
}

// formatDelta renders a comparison value in its unit.
func formatDelta(d calibration.Delta, v float64) string {
	switch d.Unit {
	case "ratio":
		return fmt.Sprintf("%.0f%%", v*100)
	case "x":
		return formatMetric(v, 1) + "x"
	default:
		return formatMetric(v, 1)
	}
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}
