package calibration

import (
	"errors"
	"fmt"
)

// ErrNotCalibrated is returned when final settings are requested for a run
// whose verdict did not pass.
var ErrNotCalibrated = errors.New("calibration did not pass all criteria")

// InvalidRunError reports a run that cannot be evaluated.
type InvalidRunError struct {
	RunID  int
	Reason string
}

func (e *InvalidRunError) Error() string {
	return fmt.Sprintf("invalid run %d: %s", e.RunID, e.Reason)
}

func emptyRunError(run *Run) error {
	id := 0
	if run != nil {
		id = run.ID
	}
	return &InvalidRunError{RunID: id, Reason: "no phase results"}
}
