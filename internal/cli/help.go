package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warnColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(passColor).
			Bold(true)

	helpCommandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00AAAA")).
				Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// helpEntry is one line of a help section.
type helpEntry struct {
	name  string
	help  string
	extra string
}

// StyledHelpPrinter renders kong help with lipgloss styling. Subcommand
// help lists the command's arguments and flags after the global flags.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		node := ctx.Model.Node
		if selected := ctx.Selected(); selected != nil {
			node = selected
		}

		var sb strings.Builder
		sb.WriteString(helpTitleStyle.Render("mictune 🎙"))
		sb.WriteString("\n")
		desc := "USB microphone calibration and recommendations"
		if node.Help != "" && node != ctx.Model.Node {
			desc = node.Help
		}
		sb.WriteString(helpDescStyle.Render(desc))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  " + usageLine(ctx.Model.Name, node) + "\n")

		writeHelpSection(&sb, "Commands:", helpCommandStyle, commandEntries(node))
		writeHelpSection(&sb, "Arguments:", helpCommandStyle, argumentEntries(node))
		writeHelpSection(&sb, "Flags:", helpFlagStyle, flagEntries(ctx.Model.Node, node))

		sb.WriteString("\n")
		_, err := io.WriteString(ctx.Stdout, sb.String())
		return err
	}
}

func writeHelpSection(sb *strings.Builder, title string, style lipgloss.Style, entries []helpEntry) {
	if len(entries) == 0 {
		return
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.name))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(e.name))
		sb.WriteString(strings.Repeat(" ", width-len(e.name)+2))
		sb.WriteString(e.help)
		if e.extra != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render(e.extra))
		}
		sb.WriteString("\n")
	}
}

func usageLine(app string, node *kong.Node) string {
	if node.Type == kong.ApplicationNode {
		return app + " <command> [flags]"
	}
	return app + " " + node.Summary()
}

func commandEntries(node *kong.Node) []helpEntry {
	var out []helpEntry
	for _, child := range node.Children {
		if child.Hidden {
			continue
		}
		out = append(out, helpEntry{name: child.Name, help: child.Help})
	}
	return out
}

func argumentEntries(node *kong.Node) []helpEntry {
	var out []helpEntry
	for _, arg := range node.Positional {
		out = append(out, helpEntry{name: arg.Summary(), help: arg.Help})
	}
	return out
}

// flagEntries lists the global flags, then the selected command's own.
func flagEntries(root, node *kong.Node) []helpEntry {
	out := []helpEntry{{name: "-h, --help", help: "Show context-sensitive help."}}

	flags := append([]*kong.Flag(nil), root.Flags...)
	if node != root {
		flags = append(flags, node.Flags...)
	}
	for _, f := range flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		name := "--" + f.Name
		if f.Short != 0 {
			name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() {
			name += "=" + strings.ToUpper(f.FormatPlaceHolder())
		}
		var extra string
		if f.HasDefault && f.Default != "" {
			extra = "(default: " + f.Default + ")"
		}
		out = append(out, helpEntry{name: name, help: f.Help, extra: extra})
	}
	return out
}
