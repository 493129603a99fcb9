// Package calibration holds the calibration data model and the pure
// evaluations over it: phase analysis, success criteria and run comparison.
package calibration

import (
	"fmt"
	"strings"
	"time"
)

// Phase identifies one timed recording step.
type Phase int

const (
	SilenceBaseline Phase = iota
	VoiceOnly
	SpeakerOnly
	VoiceAndSpeaker
	VoiceSpeakerMusic
)

// Phases lists every phase in execution order.
var Phases = []Phase{SilenceBaseline, VoiceOnly, SpeakerOnly, VoiceAndSpeaker, VoiceSpeakerMusic}

var phaseNames = map[Phase]string{
	SilenceBaseline:   "silence",
	VoiceOnly:         "voice",
	SpeakerOnly:       "speaker",
	VoiceAndSpeaker:   "mixed",
	VoiceSpeakerMusic: "music",
}

var phaseTitles = map[Phase]string{
	SilenceBaseline:   "Silence Baseline",
	VoiceOnly:         "Voice Only",
	SpeakerOnly:       "Speaker Only",
	VoiceAndSpeaker:   "Voice + Speaker",
	VoiceSpeakerMusic: "Voice + Speaker + Music",
}

// String returns the short machine name used in config, storage and flags.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Title returns the display name.
func (p Phase) Title() string {
	if title, ok := phaseTitles[p]; ok {
		return title
	}
	return p.String()
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}

// ParsePhase resolves a short phase name.
func ParsePhase(name string) (Phase, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range phaseNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Duration returns the default recording length for the phase.
func (p Phase) Duration() time.Duration {
	switch p {
	case SilenceBaseline:
		return 10 * time.Second
	case VoiceOnly, VoiceSpeakerMusic:
		return 15 * time.Second
	default:
		return 30 * time.Second
	}
}

// NeedsPlayback reports whether the secondary source plays during the phase.
func (p Phase) NeedsPlayback() bool {
	return p == SpeakerOnly || p == VoiceAndSpeaker
}
