package migration

import (
	"errors"
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/failure"
)

// ErrMigrationTimeout is returned when the migration call is still in the
// relay scheduler agenda after the configured wait.
var ErrMigrationTimeout = errors.New("migration did not complete in time")

// FatalError aborts a run. Phase is where the run stopped.
type FatalError struct {
	Phase  Phase
	Class  failure.Class
	Reason string
	Err    error
}

func newFatalError(phase Phase, err error) *FatalError {
	d := failure.Classify(err)
	return &FatalError{Phase: phase, Class: d.Class, Reason: d.Reason, Err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Phase, e.Class, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
