package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/session"
)

const (
	meterWidth  = 40
	meterMinDB  = -60.0
	boxWidth    = 64
	accentColor = lipgloss.Color("#A40000")
	warnColor   = lipgloss.Color("#FFA500")
	goodColor   = lipgloss.Color("#00AA00")
	mutedColor  = lipgloss.Color("#888888")
)

// renderSessionView renders the main session view
func renderSessionView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	if m.CurrentIndex < 0 && len(m.Preflight) > 0 {
		b.WriteString(renderPreflight(m.Preflight))
		b.WriteString("\n\n")
	}

	b.WriteString(renderPhaseList(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render("mictune 🎙 - Microphone Calibration")

	device := m.DeviceName
	if device == "" {
		device = "default input"
	}
	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(fmt.Sprintf("%s | %d phase(s) | q to quit", device, len(m.Phases)))

	return title + "\n" + subtitle
}

func renderPreflight(items []string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Bold(true).Render("Before you start"))
	for _, item := range items {
		content.WriteString("\n• " + item)
	}
	return box.Render(content.String())
}

// renderPhaseList renders every phase with its status
func renderPhaseList(m Model) string {
	var b strings.Builder
	for i, p := range m.Phases {
		b.WriteString(renderPhaseEntry(p, i == m.CurrentIndex, m.Notices))
		b.WriteString("\n")
	}
	return b.String()
}

// renderPhaseEntry renders a single phase
func renderPhaseEntry(p PhaseProgress, active bool, notices []string) string {
	title := fmt.Sprintf("Phase %d: %s", int(p.Phase)+1, p.Phase.Title())

	switch p.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(goodColor).Render("✓")
		return fmt.Sprintf(" %s %s\n   %s", icon, title, summarizeResult(p.Result))

	case StatusWaiting, StatusRecording:
		icon := lipgloss.NewStyle().Foreground(warnColor).Render("⚙")
		details := renderPhaseDetails(p)
		if active && len(notices) > 0 {
			details += "\n" + lipgloss.NewStyle().Foreground(warnColor).Render("   "+strings.Join(notices, "\n   "))
		}
		return fmt.Sprintf(" %s %s\n%s", icon, title, details)

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(accentColor).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, title, p.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s", icon, title)
	}
}

// renderPhaseDetails renders the prompt or the live meter
func renderPhaseDetails(p PhaseProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	for _, line := range session.Instructions(p.Phase) {
		content.WriteString(line + "\n")
	}
	if p.Phase == calibration.VoiceOnly {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().Italic(true).Foreground(mutedColor).Width(boxWidth - 4).Render(session.ReadingPassage))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	if p.Status == StatusWaiting {
		content.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Enter when ready..."))
		return box.Render(content.String())
	}

	content.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("● RECORDING"))
	content.WriteString(fmt.Sprintf("  %.0fs remaining\n", p.Remaining().Seconds()))
	content.WriteString(renderMeter(p.CurrentLevel, meterWidth))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("📊 Level: %.1f dBFS | Peak: %.1f dBFS", p.CurrentLevel, p.PeakLevel))

	return box.Render(content.String())
}

// renderMeter renders a level meter spanning -60 to 0 dBFS
func renderMeter(levelDBFS float64, width int) string {
	fraction := (levelDBFS - meterMinDB) / -meterMinDB
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))

	colour := goodColor
	switch {
	case levelDBFS >= calibration.ClippingDBFS:
		colour = accentColor
	case levelDBFS >= -12:
		colour = warnColor
	}
	bar := lipgloss.NewStyle().Foreground(colour).Render(strings.Repeat("█", filled))
	return bar + strings.Repeat("░", width-filled)
}

// summarizeResult renders the one-line result of a phase
func summarizeResult(r calibration.PhaseResult) string {
	parts := []string{
		fmt.Sprintf("RMS: %.1f dBFS", r.RMSDBFS),
		fmt.Sprintf("Peak: %.1f dBFS", r.PeakDBFS),
	}
	if v, ok := r.SNRDB.Get(); ok {
		parts = append(parts, fmt.Sprintf("SNR: %.1f dB", v))
	}
	if v, ok := r.Dominance.Get(); ok {
		label := "Dominance"
		if r.Inferred {
			label = "Dominance (inferred)"
		}
		parts = append(parts, fmt.Sprintf("%s: %.1fx", label, v))
	}
	if v, ok := r.MusicRatio.Get(); ok {
		parts = append(parts, fmt.Sprintf("Music: %.0f%%", v*100))
	}
	parts = append(parts, "Band: "+r.DominantBand.Name)
	return strings.Join(parts, " | ")
}

// renderCompletionSummary renders the final summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(goodColor).
		Render("✨ Calibration Recorded!")
	if m.Error != nil {
		header = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor).
			Render("Calibration finished with errors")
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, p := range m.Phases {
		b.WriteString(renderPhaseEntry(p, false, nil))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", boxWidth))
	b.WriteString("\n")
	for _, n := range m.Notices {
		b.WriteString(n + "\n")
	}
	b.WriteString("Press Enter to see the verdict and recommendations.\n")

	return b.String()
}
