package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/session"
)

// PromptMsg asks the user to get ready for a phase
type PromptMsg struct {
	Phase calibration.Phase
}

// PhaseStartMsg indicates recording has started
type PhaseStartMsg struct {
	Phase    calibration.Phase
	Duration time.Duration
}

// LevelMsg carries the live input level
type LevelMsg struct {
	Phase     calibration.Phase
	LevelDBFS float64
	Elapsed   time.Duration
	Duration  time.Duration
}

// PhaseCompleteMsg indicates a phase has finished, successfully or not
type PhaseCompleteMsg struct {
	Phase  calibration.Phase
	Result calibration.PhaseResult
	Error  error
}

// NoticeMsg is a one-line note shown under the active phase
type NoticeMsg struct {
	Text string
}

// AllCompleteMsg indicates the session has ended
type AllCompleteMsg struct {
	Error error
}

// FromEvent converts a session event into a UI message.
func FromEvent(e session.Event) tea.Msg {
	switch e.Kind {
	case session.PhaseStarted:
		return PhaseStartMsg{Phase: e.Phase, Duration: e.Duration}
	case session.Level:
		return LevelMsg{Phase: e.Phase, LevelDBFS: e.LevelDBFS, Elapsed: e.Elapsed, Duration: e.Duration}
	case session.PhaseCompleted:
		return PhaseCompleteMsg{Phase: e.Phase, Result: e.Result}
	case session.PhaseFailed:
		return PhaseCompleteMsg{Phase: e.Phase, Error: e.Err}
	case session.PlaybackSkipped:
		return NoticeMsg{Text: "No playback file configured, recording room audio only."}
	case session.PlaybackEndedEarly:
		return NoticeMsg{Text: "Playback ended before the recording did. Use a longer reference file."}
	case session.DominanceInferred:
		return NoticeMsg{Text: "Voice dominance inferred from the voice and speaker phases."}
	default:
		return nil
	}
}
