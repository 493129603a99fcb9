package advice

import "fmt"

// Positioning is placement guidance for the microphone.
type Positioning struct {
	MinInches float64 `json:"min_inches" yaml:"min_inches"`
	MaxInches float64 `json:"max_inches" yaml:"max_inches"`
	Angle     string  `json:"angle" yaml:"angle"`
	Placement string  `json:"placement" yaml:"placement"`
	// RuleID is the advisory that selected this guidance, empty for the default.
	RuleID string `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
}

// Distance formats the range, e.g. "6-12 in".
func (p Positioning) Distance() string {
	return fmt.Sprintf("%g-%g in", p.MinInches, p.MaxInches)
}

// Midpoint is the centre of the distance range.
func (p Positioning) Midpoint() float64 {
	return (p.MinInches + p.MaxInches) / 2
}

const (
	angleFacing   = "Face the front of the mic directly toward your mouth."
	angleOffAxis  = "Angle the mic slightly off-axis to reduce plosives."
	placeBetween  = "Keep the mic between you and the secondary source."
	placeCloserTo = "Move the mic toward you and away from the secondary source."
)

// DefaultPositioning applies when no corrective rule fired.
var DefaultPositioning = Positioning{
	MinInches: 6,
	MaxInches: 12,
	Angle:     angleFacing,
	Placement: placeBetween,
}

// positioningTable is keyed by fired rule, highest priority first.
var positioningTable = []Positioning{
	{RuleID: RuleVoiceClipping, MinInches: 10, MaxInches: 12, Angle: angleOffAxis, Placement: placeBetween},
	{RuleID: RuleVoiceTooQuiet, MinInches: 6, MaxInches: 8, Angle: angleFacing, Placement: placeCloserTo},
	{RuleID: RuleNotDominant, MinInches: 6, MaxInches: 8, Angle: angleFacing, Placement: placeCloserTo},
	{RuleID: RuleSecondaryTooQuiet, MinInches: 8, MaxInches: 12, Angle: angleFacing, Placement: "Turn the mic so its side faces the secondary source."},
	{RuleID: RuleNoiseHigh, MinInches: 6, MaxInches: 10, Angle: angleFacing, Placement: placeBetween},
}

func recommendPositioning(advisories []Advisory) Positioning {
	fired := make(map[string]bool, len(advisories))
	for _, a := range advisories {
		fired[a.RuleID] = true
	}
	for _, p := range positioningTable {
		if fired[p.RuleID] {
			return p
		}
	}
	return DefaultPositioning
}
