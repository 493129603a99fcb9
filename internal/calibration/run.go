package calibration

import (
	"time"
)

// Setup describes the physical arrangement, supplied by the operator.
type Setup struct {
	DeviceName string `json:"device_name" yaml:"device_name"`
	// SourcesOpposite is true when the secondary source sits on the far side
	// of the microphone from the speaker.
	SourcesOpposite bool `json:"sources_opposite" yaml:"sources_opposite"`
}

// Run is one calibration pass. Results are append-only and a phase may
// appear more than once after a partial re-run; the latest one wins.
type Run struct {
	ID        int       `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Setup     Setup     `json:"setup" yaml:"setup"`

	results []PhaseResult
}

// NewRun creates an empty run.
func NewRun(id int, createdAt time.Time, setup Setup) *Run {
	return &Run{ID: id, CreatedAt: createdAt, Setup: setup}
}

// Append adds results to the run.
func (r *Run) Append(results ...PhaseResult) {
	r.results = append(r.results, results...)
}

// Results returns a copy of every result in execution order.
func (r *Run) Results() []PhaseResult {
	out := make([]PhaseResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of stored results.
func (r *Run) Len() int {
	if r == nil {
		return 0
	}
	return len(r.results)
}

// Empty reports whether the run has no results.
func (r *Run) Empty() bool {
	return r.Len() == 0
}

// Latest returns the most recent result for a phase.
func (r *Run) Latest(phase Phase) (PhaseResult, bool) {
	i := r.latestIndex(phase)
	if i < 0 {
		return PhaseResult{}, false
	}
	return r.results[i], true
}

// latestIndex is the position of the last result for a phase, or -1.
func (r *Run) latestIndex(phase Phase) int {
	if r == nil {
		return -1
	}
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].Phase == phase {
			return i
		}
	}
	return -1
}

// Has reports whether the phase has at least one result.
func (r *Run) Has(phase Phase) bool {
	_, ok := r.Latest(phase)
	return ok
}

// Completed lists the phases that have results, in execution order.
func (r *Run) Completed() []Phase {
	var done []Phase
	for _, p := range Phases {
		if r.Has(p) {
			done = append(done, p)
		}
	}
	return done
}

// Missing lists the phases without results.
func (r *Run) Missing() []Phase {
	var missing []Phase
	for _, p := range Phases {
		if !r.Has(p) {
			missing = append(missing, p)
		}
	}
	return missing
}
