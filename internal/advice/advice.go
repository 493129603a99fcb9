package advice

import (
	"github.com/linuxmatters/mictune/internal/calibration"
)

// Set is the full recommendation for one run. It is derived data,
// recomputed from the run whenever needed.
type Set struct {
	RunID       int                 `json:"run_id" yaml:"run_id"`
	Advisories  []Advisory          `json:"advisories" yaml:"advisories"`
	Pattern     PatternChoice       `json:"pattern" yaml:"pattern"`
	Positioning Positioning         `json:"positioning" yaml:"positioning"`
	Trends      []calibration.Delta `json:"trends,omitempty" yaml:"trends,omitempty"`
	// PriorRunID is the run the trends compare against, 0 when none.
	PriorRunID int `json:"prior_run_id,omitempty" yaml:"prior_run_id,omitempty"`
}

// Messages returns the advisory text in rule order.
func (s Set) Messages() []string {
	out := make([]string, 0, len(s.Advisories))
	for _, a := range s.Advisories {
		out = append(out, a.Message)
	}
	return out
}

// Corrective returns the advisories that ask for a change.
func (s Set) Corrective() []Advisory {
	var out []Advisory
	for _, a := range s.Advisories {
		if a.Severity.Corrective() {
			out = append(out, a)
		}
	}
	return out
}

// Fired reports whether the rule produced an advisory.
func (s Set) Fired(ruleID string) bool {
	for _, a := range s.Advisories {
		if a.RuleID == ruleID {
			return true
		}
	}
	return false
}

// Regressions returns the trends that got worse since the prior run.
func (s Set) Regressions() []calibration.Delta {
	return calibration.Regressions(s.Trends)
}

// Recommend evaluates the advice table, pattern and positioning for a run.
// Prior runs are oldest first; the newest non-empty one is used for trends.
// It fails only when the run has no results.
func Recommend(run *calibration.Run, prior []*calibration.Run) (Set, error) {
	if run.Empty() {
		id := 0
		if run != nil {
			id = run.ID
		}
		return Set{}, &calibration.InvalidRunError{RunID: id, Reason: "no phase results"}
	}

	advisories := evaluateRules(run)
	set := Set{
		RunID:       run.ID,
		Advisories:  advisories,
		Pattern:     recommendPattern(run),
		Positioning: recommendPositioning(advisories),
	}

	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Empty() || prior[i].ID == run.ID {
			continue
		}
		set.Trends = calibration.Compare(run, prior[i])
		set.PriorRunID = prior[i].ID
		break
	}
	return set, nil
}
