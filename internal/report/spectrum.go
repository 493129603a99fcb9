package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// SpectrumFileName is the CSV file name for a phase's spectrum.
func SpectrumFileName(p calibration.Phase) string {
	return "spectrum-" + p.String() + ".csv"
}

// WriteSpectrumCSV writes frequency and power columns, with power also in
// dB for plotting.
func WriteSpectrumCSV(w io.Writer, s metrics.Spectrum) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"frequency_hz", "power", "power_db"}); err != nil {
		return fmt.Errorf("write spectrum header: %w", err)
	}
	for i, f := range s.Frequencies {
		p := s.Power[i]
		row := []string{
			strconv.FormatFloat(f, 'f', 2, 64),
			strconv.FormatFloat(p, 'g', 8, 64),
			strconv.FormatFloat(powerDB(p), 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write spectrum row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// powerDB converts power to dB. Empty bins sit at the dBFS floor.
func powerDB(p float64) float64 {
	if p <= 0 {
		return metrics.FloorDBFS
	}
	return 10 * math.Log10(p)
}
