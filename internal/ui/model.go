// Package ui provides the Bubbletea terminal user interface for a guided
// calibration session
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/mictune/internal/calibration"
)

// PhaseStatus represents the state of a single phase
type PhaseStatus int

const (
	StatusQueued PhaseStatus = iota
	StatusWaiting
	StatusRecording
	StatusComplete
	StatusError
)

// PhaseProgress tracks one phase of the session
type PhaseProgress struct {
	Phase    calibration.Phase
	Status   PhaseStatus
	Duration time.Duration
	Elapsed  time.Duration

	CurrentLevel float64
	PeakLevel    float64

	Result calibration.PhaseResult
	Error  error
}

// Remaining is the countdown for the phase
func (p PhaseProgress) Remaining() time.Duration {
	if r := p.Duration - p.Elapsed; r > 0 {
		return r
	}
	return 0
}

// Model is the Bubbletea model for the session UI
type Model struct {
	DeviceName string
	Preflight  []string

	Phases       []PhaseProgress
	CurrentIndex int
	Notices      []string

	Done  bool
	Error error

	ready  chan<- struct{}
	cancel context.CancelFunc

	Width  int
	Height int
}

// NewModel creates a model for the given phases. Enter is forwarded on
// ready while a phase is waiting; quitting calls cancel.
func NewModel(device string, phases []calibration.Phase, preflight []string, ready chan<- struct{}, cancel context.CancelFunc) Model {
	progress := make([]PhaseProgress, len(phases))
	for i, p := range phases {
		progress[i] = PhaseProgress{
			Phase:     p,
			Status:    StatusQueued,
			PeakLevel: -96.0,
		}
	}
	return Model{
		DeviceName:   device,
		Preflight:    preflight,
		Phases:       progress,
		CurrentIndex: -1,
		ready:        ready,
		cancel:       cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.Done {
				return m, tea.Quit
			}
			if p := m.current(); p != nil && p.Status == StatusWaiting && m.ready != nil {
				select {
				case m.ready <- struct{}{}:
				default:
				}
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PromptMsg:
		m.CurrentIndex = m.indexOf(msg.Phase)
		m.Notices = nil
		if p := m.current(); p != nil {
			p.Status = StatusWaiting
		}

	case PhaseStartMsg:
		m.CurrentIndex = m.indexOf(msg.Phase)
		if p := m.current(); p != nil {
			p.Status = StatusRecording
			p.Duration = msg.Duration
			p.Elapsed = 0
		}

	case LevelMsg:
		if p := m.current(); p != nil && p.Phase == msg.Phase {
			p.CurrentLevel = msg.LevelDBFS
			p.Elapsed = msg.Elapsed
			if msg.LevelDBFS > p.PeakLevel {
				p.PeakLevel = msg.LevelDBFS
			}
		}

	case PhaseCompleteMsg:
		i := m.indexOf(msg.Phase)
		if i >= 0 {
			p := &m.Phases[i]
			p.Result = msg.Result
			p.Error = msg.Error
			p.Status = StatusComplete
			if msg.Error != nil {
				p.Status = StatusError
			}
		}

	case NoticeMsg:
		m.Notices = append(m.Notices, msg.Text)

	case AllCompleteMsg:
		m.Done = true
		m.Error = msg.Error
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderSessionView(m)
}

func (m *Model) current() *PhaseProgress {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Phases) {
		return nil
	}
	return &m.Phases[m.CurrentIndex]
}

// indexOf prefers a phase that has not finished so repeated phases run in
// order.
func (m Model) indexOf(p calibration.Phase) int {
	last := -1
	for i, pp := range m.Phases {
		if pp.Phase != p {
			continue
		}
		if pp.Status != StatusComplete && pp.Status != StatusError {
			return i
		}
		last = i
	}
	return last
}

// Prompter blocks a session phase until Enter is pressed in the UI.
type Prompter struct {
	send  func(tea.Msg)
	ready <-chan struct{}
}

// NewPrompter wires a prompter to a program's Send and the model's ready
// channel.
func NewPrompter(send func(tea.Msg), ready <-chan struct{}) *Prompter {
	return &Prompter{send: send, ready: ready}
}

// Ready shows the phase prompt and waits for the user.
func (p *Prompter) Ready(ctx context.Context, phase calibration.Phase) error {
	if !phase.Valid() {
		return fmt.Errorf("prompt: invalid phase %d", int(phase))
	}
	p.send(PromptMsg{Phase: phase})
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
