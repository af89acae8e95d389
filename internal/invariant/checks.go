package invariant

import (
	"fmt"
	"strconv"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/lease"
)

// CheckAgendaScheduled verifies the migration call is queued before the
// upgrade. A missing entry is a setup error.
func CheckAgendaScheduled(scheduled bool) Findings {
	if scheduled {
		return nil
	}
	return Findings{{
		Check:    AgendaPresence,
		Kind:     KindAgendaMissing,
		Severity: SeverityHard,
		Message:  "migration call not found in scheduler agenda before upgrade",
		Expected: "present",
		Observed: "absent",
	}}
}

// CheckAgendaCleared verifies the migration call left the agenda after the
// upgrade.
func CheckAgendaCleared(scheduled bool) Findings {
	if !scheduled {
		return nil
	}
	return Findings{{
		Check:    AgendaPresence,
		Kind:     KindAgendaNotCleared,
		Severity: SeverityHard,
		Message:  "migration call still in scheduler agenda after upgrade",
		Expected: "absent",
		Observed: "present",
	}}
}

// CheckParaSetStability compares the ordered relay para lists.
func CheckParaSetStability(before, after []model.ParaID) Findings {
	var out Findings
	if len(before) != len(after) {
		out = append(out, Finding{
			Check:    ParaSetStability,
			Kind:     KindCountMismatch,
			Severity: SeverityHard,
			Message:  "legacy para count changed",
			Expected: strconv.Itoa(len(before)),
			Observed: strconv.Itoa(len(after)),
		})
	}
	for i := 0; i < min(len(before), len(after)); i++ {
		if before[i] == after[i] {
			continue
		}
		out = append(out, Finding{
			Check:    ParaSetStability,
			Kind:     KindPositionalMismatch,
			Severity: SeverityHard,
			Message:  fmt.Sprintf("legacy para mismatch at position %d", i),
			Expected: formatPara(before[i]),
			Observed: formatPara(after[i]),
			ParaID:   paraRef(before[i]),
		})
	}
	return out
}

// CheckLeaseRecordStability compares relay lease records, both sorted by
// ParaID.
func CheckLeaseRecordStability(before, after []model.LegacyLease) Findings {
	var out Findings
	if len(before) != len(after) {
		out = append(out, Finding{
			Check:    LeaseRecordStability,
			Kind:     KindCountMismatch,
			Severity: SeverityHard,
			Message:  "legacy lease record count changed",
			Expected: strconv.Itoa(len(before)),
			Observed: strconv.Itoa(len(after)),
		})
	}
	for i := 0; i < min(len(before), len(after)); i++ {
		if before[i] == after[i] {
			continue
		}
		out = append(out, Finding{
			Check:    LeaseRecordStability,
			Kind:     KindPositionalMismatch,
			Severity: SeverityHard,
			Message:  fmt.Sprintf("legacy lease record mismatch at position %d", i),
			Expected: formatLegacyLease(before[i]),
			Observed: formatLegacyLease(after[i]),
			ParaID:   paraRef(before[i].ParaID),
		})
	}
	return out
}

// CheckReservationCompleteness verifies that every system chain holds
// exactly one single-entry, full-mask task reservation.
func CheckReservationCompleteness(systemChains []model.ParaID, reservations []model.Reservation, maskWidth int) Findings {
	var out Findings
	hard := func(kind Kind, msg, expected, observed string, para *model.ParaID) {
		out = append(out, Finding{
			Check:    ReservationCompleteness,
			Kind:     kind,
			Severity: SeverityHard,
			Message:  msg,
			Expected: expected,
			Observed: observed,
			ParaID:   para,
		})
	}

	if len(systemChains) == 0 {
		hard(KindEmptySystemSet, "no system chains found in legacy leases", ">0", "0", nil)
	}
	if len(systemChains) != len(reservations) {
		hard(KindCountMismatch, "system reservation count mismatch",
			strconv.Itoa(len(systemChains)), strconv.Itoa(len(reservations)), nil)
	}

	fullMask := model.FullCoreMask(maskWidth).String()
	assigned := make(map[model.ParaID]int, len(reservations))
	for i, res := range reservations {
		if len(res) != 1 {
			hard(KindNotSingleEntry, fmt.Sprintf("reservation %d is not a single entry", i), "1", strconv.Itoa(len(res)), nil)
		}
		for _, item := range res {
			if !item.Mask.IsFull(maskWidth) {
				hard(KindMaskMismatch, fmt.Sprintf("reservation %d mask is not the full core mask", i), fullMask, item.Mask.String(), nil)
			}
			if item.Assignment.Kind != model.AssignmentTask {
				hard(KindUnsupportedAssignment, fmt.Sprintf("reservation %d has a non-task assignment", i), string(model.AssignmentTask), item.Assignment.String(), nil)
				continue
			}
			assigned[item.Assignment.Task]++
		}
	}

	for _, para := range systemChains {
		switch n := assigned[para]; {
		case n == 0:
			hard(KindMissingAssignment, "system chain has no reservation", "1", "0", paraRef(para))
		case n > 1:
			hard(KindDuplicateAssignment, "system chain has more than one reservation", "1", strconv.Itoa(n), paraRef(para))
		}
	}
	return out
}

// ExpectedCoretimeLeases projects every relay lease holder with at least
// one remaining period onto the coretime ledger. The result is sorted by
// task.
func ExpectedCoretimeLeases(params lease.Params, referenceBlock model.BlockNumber, before []model.LegacyLease) []model.CoretimeLease {
	expected := make([]model.CoretimeLease, 0, len(before))
	for _, l := range before {
		if l.ParaID.IsSystemChain() || l.Count <= 0 {
			continue
		}
		expected = append(expected, model.CoretimeLease{
			Task:  l.ParaID,
			Until: params.Project(int64(referenceBlock), int64(l.Count)),
		})
	}
	return model.SortCoretimeLeases(expected)
}

// CheckLeaseProjection compares projected coretime leases against the
// observed ones. Findings are soft: the relay lease state the projection is
// derived from can lag the coretime chain.
func CheckLeaseProjection(expected, observed []model.CoretimeLease) Findings {
	var out Findings
	observedByTask := make(map[model.ParaID]model.CoretimeLease, len(observed))
	for _, l := range model.SortCoretimeLeases(observed) {
		if _, dup := observedByTask[l.Task]; !dup {
			observedByTask[l.Task] = l
		}
	}
	expectedTasks := make(map[model.ParaID]struct{}, len(expected))

	for _, exp := range expected {
		expectedTasks[exp.Task] = struct{}{}
		got, ok := observedByTask[exp.Task]
		if !ok {
			out = append(out, Finding{
				Check:    LeaseProjection,
				Kind:     KindEntryNotFound,
				Severity: SeveritySoft,
				Message:  "coretime lease for para not found",
				Expected: formatTimeSlice(exp.Until),
				Observed: "none",
				ParaID:   paraRef(exp.Task),
			})
			continue
		}
		if got.Until != exp.Until {
			out = append(out, Finding{
				Check:    LeaseProjection,
				Kind:     KindTimeSliceMismatch,
				Severity: SeveritySoft,
				Message:  "coretime lease found but time slice does not match",
				Expected: formatTimeSlice(exp.Until),
				Observed: formatTimeSlice(got.Until),
				ParaID:   paraRef(exp.Task),
			})
		}
	}

	for _, got := range model.SortCoretimeLeases(observed) {
		if _, ok := expectedTasks[got.Task]; ok {
			continue
		}
		out = append(out, Finding{
			Check:    LeaseProjection,
			Kind:     KindUnexpectedEntry,
			Severity: SeveritySoft,
			Message:  "coretime lease has no relay lease counterpart",
			Expected: "none",
			Observed: formatTimeSlice(got.Until),
			ParaID:   paraRef(got.Task),
		})
	}
	return out
}

// CheckCoreCountParity compares the relay configured core count with the
// coretime core count inbox.
func CheckCoreCountParity(active model.CoreCount, inbox *model.CoreCount) Findings {
	expected := strconv.FormatUint(uint64(active), 10)
	if inbox == nil {
		return Findings{{
			Check:    CoreCountParity,
			Kind:     KindCoreCountInboxEmpty,
			Severity: SeverityHard,
			Message:  "coretime core count inbox is empty",
			Expected: expected,
			Observed: "none",
		}}
	}
	if *inbox == active {
		return nil
	}
	return Findings{{
		Check:    CoreCountParity,
		Kind:     KindCoreCountMismatch,
		Severity: SeverityHard,
		Message:  "relay core count does not match coretime core count inbox",
		Expected: expected,
		Observed: strconv.FormatUint(uint64(*inbox), 10),
	}}
}

// CheckNoUnexpectedPool flags runs where active relay leases do not account
// for every core. The migration is not expected to create pool assignments;
// if it starts doing so this surfaces it.
func CheckNoUnexpectedPool(afterLeases []model.LegacyLease, cores model.CoreCount) Findings {
	active := model.ActiveLeaseCount(afterLeases)
	if active == int(cores) {
		return nil
	}
	return Findings{{
		Check:    NoUnexpectedPool,
		Kind:     KindUnexpectedPool,
		Severity: SeveritySoft,
		Message:  "non-zero lease count differs from core count, verify pool creation",
		Expected: strconv.FormatUint(uint64(cores), 10),
		Observed: strconv.Itoa(active),
	}}
}

func formatPara(id model.ParaID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatTimeSlice(ts model.TimeSlice) string {
	return strconv.FormatInt(int64(ts), 10)
}

func formatLegacyLease(l model.LegacyLease) string {
	return fmt.Sprintf("(%d, %d)", l.ParaID, l.Count)
}
