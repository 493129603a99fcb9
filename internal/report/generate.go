package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/linuxmatters/mictune/internal/metrics"
)

// Files lists the paths written by Generate.
type Files struct {
	Text     string
	Markdown string
	HTML     string
	Summary  string
	Spectra  []string
}

// Generate writes every report format for a run into dir, creating it
// when needed.
func Generate(dir string, data Data) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("failed to create report directory: %w", err)
	}

	files := Files{
		Text:     filepath.Join(dir, "report.txt"),
		Markdown: filepath.Join(dir, "report.md"),
		HTML:     filepath.Join(dir, "report.html"),
		Summary:  filepath.Join(dir, "summary.yaml"),
	}

	var text bytes.Buffer
	WriteText(&text, data)
	if err := os.WriteFile(files.Text, text.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("failed to write text report: %w", err)
	}

	md := []byte(Markdown(data))
	if err := os.WriteFile(files.Markdown, md, 0o644); err != nil {
		return Files{}, fmt.Errorf("failed to write markdown report: %w", err)
	}

	page, err := HTML(fmt.Sprintf("Calibration Run %d", data.Run.ID), md)
	if err != nil {
		return Files{}, err
	}
	if err := os.WriteFile(files.HTML, page, 0o644); err != nil {
		return Files{}, fmt.Errorf("failed to write HTML report: %w", err)
	}

	summary, err := YAML(data)
	if err != nil {
		return Files{}, err
	}
	if err := os.WriteFile(files.Summary, summary, 0o644); err != nil {
		return Files{}, fmt.Errorf("failed to write summary: %w", err)
	}

	for phase, spectrum := range data.Spectra {
		path := filepath.Join(dir, SpectrumFileName(phase))
		if err := writeSpectrumFile(path, spectrum); err != nil {
			return Files{}, err
		}
		files.Spectra = append(files.Spectra, path)
	}
	sort.Strings(files.Spectra)

	return files, nil
}

func writeSpectrumFile(path string, s metrics.Spectrum) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create spectrum file: %w", err)
	}
	defer f.Close()
	if err := WriteSpectrumCSV(f, s); err != nil {
		return err
	}
	return f.Close()
}
