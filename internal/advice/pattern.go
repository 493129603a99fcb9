package advice

import (
	"fmt"
	"strings"

	"github.com/linuxmatters/mictune/internal/calibration"
)

// Pattern is a microphone polar pattern.
type Pattern int

const (
	Cardioid Pattern = iota
	Omnidirectional
	Bidirectional
	Stereo
)

var patternNames = []string{"Cardioid", "Omnidirectional", "Bidirectional", "Stereo"}

func (p Pattern) String() string {
	if int(p) >= 0 && int(p) < len(patternNames) {
		return patternNames[p]
	}
	return fmt.Sprintf("pattern(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePattern resolves a pattern name, case-insensitively.
func ParsePattern(name string) (Pattern, error) {
	for i, n := range patternNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Pattern(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q", name)
}

// faintSpeakerSNR is the speaker SNR below which a wider pattern is needed.
const faintSpeakerSNR = 6.0

// PatternChoice is the recommended pattern and why.
type PatternChoice struct {
	Pattern   Pattern `json:"pattern" yaml:"pattern"`
	Reasoning string  `json:"reasoning" yaml:"reasoning"`
}

// recommendPattern picks one pattern, first match wins. Stereo is never
// chosen: it only suits music-only capture.
func recommendPattern(run *calibration.Run) PatternChoice {
	if res, ok := run.Latest(calibration.SpeakerOnly); ok {
		if snr, ok := res.SNRDB.Get(); ok && snr < faintSpeakerSNR {
			return PatternChoice{
				Pattern: Omnidirectional,
				Reasoning: fmt.Sprintf("Secondary source SNR is low (%.1f dB). Omnidirectional picks up "+
					"sound equally from all directions and will improve its capture.", snr),
			}
		}
	}
	if run.Setup.SourcesOpposite {
		return PatternChoice{
			Pattern: Bidirectional,
			Reasoning: "The voice and the secondary source sit on opposite sides of the mic. " +
				"Bidirectional picks up front and back while rejecting the sides.",
		}
	}
	return PatternChoice{
		Pattern: Cardioid,
		Reasoning: "Cardioid gives the best voice isolation while still picking up " +
			"enough of the secondary source.",
	}
}
