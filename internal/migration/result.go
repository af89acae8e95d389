package migration

import (
	"time"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/upgrade"
)

type Outcome string

const (
	OutcomePass  Outcome = "PASS"
	OutcomeFail  Outcome = "FAIL"
	OutcomeFatal Outcome = "FATAL"
)

// Process exit codes.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitFatal = 2
)

// Result is everything a run observed, including partial state when the run
// aborted.
type Result struct {
	RunID        string
	RuntimePath  string
	StartedAt    time.Time
	FinishedAt   time.Time
	Phase        Phase
	Before       *model.LegacySnapshot
	After        *model.LegacySnapshot
	Coretime     *model.CoretimeSnapshot
	Upgrade      *upgrade.Result
	PollAttempts int
	Findings     invariant.Findings
	Disabled     []invariant.Check
	Fatal        *FatalError
}

// Outcome is FATAL when the run aborted, FAIL when any hard finding was
// recorded and PASS otherwise. Soft findings never fail a run.
func (r *Result) Outcome() Outcome {
	switch {
	case r.Fatal != nil:
		return OutcomeFatal
	case r.Findings.HasHard():
		return OutcomeFail
	default:
		return OutcomePass
	}
}

func (r *Result) ExitCode() int {
	switch r.Outcome() {
	case OutcomeFatal:
		return ExitFatal
	case OutcomeFail:
		return ExitFail
	default:
		return ExitPass
	}
}

func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
