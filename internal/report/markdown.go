package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/linuxmatters/mictune/internal/advice"
	"github.com/linuxmatters/mictune/internal/calibration"
)

// Markdown renders the full run report.
func Markdown(data Data) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Calibration Report: Run %d\n\n", data.Run.ID)
	fmt.Fprintf(&sb, "- **Recorded:** %s\n", data.Run.CreatedAt.Format("2006-01-02 15:04"))
	if data.Run.Setup.DeviceName != "" {
		fmt.Fprintf(&sb, "- **Device:** %s\n", data.Run.Setup.DeviceName)
	}
	if data.MainsHz > 0 {
		fmt.Fprintf(&sb, "- **Mains:** %.0f Hz\n", data.MainsHz)
	}
	if !data.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Generated:** %s\n", data.GeneratedAt.Format("2006-01-02 15:04"))
	}
	verdict := "FAIL"
	if data.Verdict.Passed {
		verdict = "PASS"
	}
	fmt.Fprintf(&sb, "- **Verdict:** %s\n\n", verdict)

	sb.WriteString("## Measurements\n\n")
	sb.WriteString("| Phase | RMS (dBFS) | Peak (dBFS) | SNR (dB) | Dominance | Music | Dominant Band |\n")
	sb.WriteString("|-------|-----------:|------------:|---------:|----------:|------:|---------------|\n")
	for _, p := range calibration.Phases {
		r, ok := data.Run.Latest(p)
		if !ok {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n", p.Title(),
				MissingValue, MissingValue, MissingValue, MissingValue, MissingValue, MissingValue)
			continue
		}
		title := p.Title()
		if r.Inferred {
			title += " (inferred)"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n", title,
			formatDBFS(r.RMSDBFS), formatDBFS(r.PeakDBFS), formatOptional(r.SNRDB, 1),
			formatOptional(r.Dominance, 1), formatPercent(r.MusicRatio), r.DominantBand)
	}
	sb.WriteString("\n")

	if len(data.Advice.Trends) > 0 {
		fmt.Fprintf(&sb, "## Comparison with Run %d\n\n", data.Advice.PriorRunID)
		sb.WriteString("| Metric | Previous | Current | Change | Direction |\n")
		sb.WriteString("|--------|---------:|--------:|-------:|-----------|\n")
		for _, d := range data.Advice.Trends {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", d.Metric,
				formatDelta(d, d.Previous), formatDelta(d, d.Current), formatSigned(d.Change(), 2), d.Direction)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Success Criteria\n\n")
	sb.WriteString("| Criterion | Measured | Target | Result |\n")
	sb.WriteString("|-----------|---------:|--------|--------|\n")
	for _, c := range data.Verdict.Criteria {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", c.Title, formatMeasured(c), c.Target, statusMark(c.Status))
	}
	sb.WriteString("\n")

	sb.WriteString("## Recommendations\n\n")
	if len(data.Advice.Advisories) == 0 {
		sb.WriteString("No adjustments needed.\n")
	}
	for _, a := range data.Advice.Advisories {
		fmt.Fprintf(&sb, "- **%s** %s _(%s)_\n", severityLabel(a.Severity), a.Message, a.Condition)
	}
	sb.WriteString("\n")

	sb.WriteString("## Pattern\n\n")
	fmt.Fprintf(&sb, "**%s**: %s\n\n", data.Advice.Pattern.Pattern, data.Advice.Pattern.Reasoning)

	sb.WriteString("## Positioning\n\n")
	pos := data.Advice.Positioning
	fmt.Fprintf(&sb, "- Distance: %s from your mouth\n", pos.Distance())
	fmt.Fprintf(&sb, "- %s\n", pos.Angle)
	fmt.Fprintf(&sb, "- %s\n", pos.Placement)

	if len(data.Spectra) > 0 {
		sb.WriteString("\n## Spectra\n\n")
		for _, p := range calibration.Phases {
			if _, ok := data.Spectra[p]; ok {
				fmt.Fprintf(&sb, "- [%s](%s)\n", p.Title(), SpectrumFileName(p))
			}
		}
	}

	return sb.String()
}

func severityLabel(s advice.Severity) string {
	switch s {
	case advice.Danger:
		return "DANGER"
	case advice.Warning:
		return "Warning"
	case advice.Good:
		return "Good"
	default:
		return "Info"
	}
}

// HTML converts a markdown report to a standalone HTML page.
func HTML(title string, markdown []byte) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:0.3em 0.6em}</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
