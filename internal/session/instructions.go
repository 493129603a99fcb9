package session

import "github.com/linuxmatters/mictune/internal/calibration"

// ReadingPassage is read aloud during the voice phase.
const ReadingPassage = "The quarterly results show strong momentum across all business units. " +
	"We're seeing particular growth in the enterprise segment, with several " +
	"clients expanding their deployments. I want to highlight three key metrics. " +
	"First, time-to-value has decreased by forty percent. Second, expansion " +
	"revenue is up thirty-two percent quarter over quarter. And third, " +
	"satisfaction among enterprise accounts has hit an all-time high."

// Instructions returns what the user should do during a phase.
func Instructions(p calibration.Phase) []string {
	switch p {
	case calibration.SilenceBaseline:
		return []string{
			"Stay silent. Don't touch anything.",
			"Measuring the room noise floor.",
		}
	case calibration.VoiceOnly:
		return []string{
			"Speak naturally at meeting volume.",
			"Read the passage below or just talk.",
		}
	case calibration.SpeakerOnly:
		return []string{
			"Meeting audio plays through the speakers.",
			"Stay silent while speaker pickup is measured.",
		}
	case calibration.VoiceAndSpeaker:
		return []string{
			"Meeting audio plays through the speakers.",
			"Talk over it as you would in a real call.",
		}
	case calibration.VoiceSpeakerMusic:
		return []string{
			"Start background music at your normal listening volume.",
			"Stay silent while music bleed is measured.",
		}
	default:
		return nil
	}
}

// Preflight is the checklist shown before the first phase.
var Preflight = []string{
	"The microphone is the selected input device.",
	"System output is NOT the microphone, or playback will feed back.",
	"Set the OS input volume to about 80% and use the hardware gain knob for fine tuning.",
	"The headphone knob on the microphone does not affect recordings.",
}
