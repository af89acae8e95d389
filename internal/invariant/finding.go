package invariant

import (
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

type Severity string

const (
	// SeverityHard findings mean the migration did not produce the expected state.
	SeverityHard Severity = "hard"
	// SeveritySoft findings are surfaced for inspection but do not fail a run.
	SeveritySoft Severity = "soft"
)

// Check names an invariant verified by the checker.
type Check string

const (
	// AgendaPresence: the migration call is in the relay scheduler agenda
	// before the upgrade and gone after it.
	AgendaPresence Check = "agenda_presence"

	// ParaSetStability: the relay para list is identical before and after.
	ParaSetStability Check = "para_set_stability"

	// LeaseRecordStability: the relay lease records are identical before and
	// after. The migration copies leases to the coretime chain, it does not
	// consume them on the relay.
	LeaseRecordStability Check = "lease_record_stability"

	// ReservationCompleteness: every system chain holds exactly one full-mask
	// task reservation on the coretime chain.
	ReservationCompleteness Check = "reservation_completeness"

	// LeaseProjection: every relay lease holder has a coretime lease ending
	// at the projected time-slice.
	LeaseProjection Check = "lease_projection"

	// CoreCountParity: the relay configured core count reached the coretime
	// core count inbox.
	CoreCountParity Check = "core_count_parity"

	// NoUnexpectedPool: active relay leases account for every core, so no
	// pool assignment was created.
	NoUnexpectedPool Check = "no_unexpected_pool"
)

// AllChecks lists checks in execution order.
var AllChecks = []Check{
	AgendaPresence,
	ParaSetStability,
	LeaseRecordStability,
	ReservationCompleteness,
	LeaseProjection,
	CoreCountParity,
	NoUnexpectedPool,
}

// ParseCheck resolves a check by name.
func ParseCheck(name string) (Check, error) {
	for _, c := range AllChecks {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown check %q", name)
}

type Kind string

const (
	KindAgendaMissing         Kind = "agenda_missing"
	KindAgendaNotCleared      Kind = "agenda_not_cleared"
	KindCountMismatch         Kind = "count_mismatch"
	KindPositionalMismatch    Kind = "positional_mismatch"
	KindEmptySystemSet        Kind = "empty_system_set"
	KindNotSingleEntry        Kind = "not_single_entry"
	KindMaskMismatch          Kind = "mask_mismatch"
	KindUnsupportedAssignment Kind = "unsupported_assignment"
	KindMissingAssignment     Kind = "missing_assignment"
	KindDuplicateAssignment   Kind = "duplicate_assignment"
	KindEntryNotFound         Kind = "entry_not_found"
	KindTimeSliceMismatch     Kind = "time_slice_mismatch"
	KindUnexpectedEntry       Kind = "unexpected_entry"
	KindCoreCountMismatch     Kind = "core_count_mismatch"
	KindCoreCountInboxEmpty   Kind = "core_count_inbox_empty"
	KindUnexpectedPool        Kind = "unexpected_pool"
)

// Finding records one violated invariant. ParaID is set when the violation
// concerns a single para.
type Finding struct {
	Check    Check         `json:"check"`
	Kind     Kind          `json:"kind"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Expected string        `json:"expected"`
	Observed string        `json:"observed"`
	ParaID   *model.ParaID `json:"para_id,omitempty"`
}

func (f Finding) String() string {
	s := fmt.Sprintf("[%s] %s/%s: %s (expected=%s observed=%s)", f.Severity, f.Check, f.Kind, f.Message, f.Expected, f.Observed)
	if f.ParaID != nil {
		s += fmt.Sprintf(" para_id=%d", *f.ParaID)
	}
	return s
}

func paraRef(id model.ParaID) *model.ParaID {
	return &id
}

// Findings accumulates check results. An empty list is a pass.
type Findings []Finding

func (fs Findings) Hard() Findings {
	return fs.filter(SeverityHard)
}

func (fs Findings) Soft() Findings {
	return fs.filter(SeveritySoft)
}

func (fs Findings) HasHard() bool {
	for _, f := range fs {
		if f.Severity == SeverityHard {
			return true
		}
	}
	return false
}

// ByCheck groups findings by check, preserving order within each group.
func (fs Findings) ByCheck() map[Check]Findings {
	out := make(map[Check]Findings)
	for _, f := range fs {
		out[f.Check] = append(out[f.Check], f)
	}
	return out
}

// OfKind returns the findings with the given kind.
func (fs Findings) OfKind(kind Kind) Findings {
	var out Findings
	for _, f := range fs {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func (fs Findings) filter(sev Severity) Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
