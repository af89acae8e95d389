package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/lease"
)

func fullMaskReservation(task model.ParaID) model.Reservation {
	return model.Reservation{{
		Mask:       model.FullCoreMask(model.DefaultCoreMaskWidth),
		Assignment: model.TaskAssignment(task),
	}}
}

// ---------------------------------------------------------------------------
// Agenda presence
// ---------------------------------------------------------------------------

func TestCheckAgendaScheduled(t *testing.T) {
	assert.Empty(t, CheckAgendaScheduled(true))

	findings := CheckAgendaScheduled(false)
	require.Len(t, findings, 1)
	assert.Equal(t, AgendaPresence, findings[0].Check)
	assert.Equal(t, KindAgendaMissing, findings[0].Kind)
	assert.Equal(t, SeverityHard, findings[0].Severity)
}

func TestCheckAgendaCleared(t *testing.T) {
	assert.Empty(t, CheckAgendaCleared(false))

	findings := CheckAgendaCleared(true)
	require.Len(t, findings, 1)
	assert.Equal(t, KindAgendaNotCleared, findings[0].Kind)
	assert.Equal(t, SeverityHard, findings[0].Severity)
}

// ---------------------------------------------------------------------------
// Para set stability
// ---------------------------------------------------------------------------

func TestCheckParaSetStability_Identical(t *testing.T) {
	paras := []model.ParaID{1000, 1001, 2000, 2004}
	assert.Empty(t, CheckParaSetStability(paras, append([]model.ParaID(nil), paras...)))
	assert.Empty(t, CheckParaSetStability(nil, nil))
}

func TestCheckParaSetStability_LengthMismatch(t *testing.T) {
	findings := CheckParaSetStability([]model.ParaID{1000, 2000}, []model.ParaID{1000})

	require.Len(t, findings, 1)
	assert.Equal(t, KindCountMismatch, findings[0].Kind)
	assert.Equal(t, "2", findings[0].Expected)
	assert.Equal(t, "1", findings[0].Observed)
	assert.True(t, findings.HasHard())
}

func TestCheckParaSetStability_OrderMatters(t *testing.T) {
	findings := CheckParaSetStability([]model.ParaID{1000, 2000}, []model.ParaID{2000, 1000})

	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, KindPositionalMismatch, f.Kind)
		assert.Equal(t, SeverityHard, f.Severity)
	}
	assert.Equal(t, model.ParaID(1000), *findings[0].ParaID)
	assert.Equal(t, "2000", findings[0].Observed)
}

// ---------------------------------------------------------------------------
// Lease record stability
// ---------------------------------------------------------------------------

func TestCheckLeaseRecordStability(t *testing.T) {
	before := []model.LegacyLease{{ParaID: 1000, Count: 1}, {ParaID: 2001, Count: 3}}

	assert.Empty(t, CheckLeaseRecordStability(before, []model.LegacyLease{{ParaID: 1000, Count: 1}, {ParaID: 2001, Count: 3}}))

	findings := CheckLeaseRecordStability(before, []model.LegacyLease{{ParaID: 1000, Count: 1}, {ParaID: 2001, Count: 2}})
	require.Len(t, findings, 1)
	assert.Equal(t, KindPositionalMismatch, findings[0].Kind)
	assert.Equal(t, "(2001, 3)", findings[0].Expected)
	assert.Equal(t, "(2001, 2)", findings[0].Observed)
}

// ---------------------------------------------------------------------------
// Reservation completeness
// ---------------------------------------------------------------------------

func TestCheckReservationCompleteness_AllPresent(t *testing.T) {
	system := []model.ParaID{10, 11, 12}
	reservations := []model.Reservation{fullMaskReservation(12), fullMaskReservation(10), fullMaskReservation(11)}

	assert.Empty(t, CheckReservationCompleteness(system, reservations, model.DefaultCoreMaskWidth))
}

func TestCheckReservationCompleteness_MissingOne(t *testing.T) {
	system := []model.ParaID{10, 11, 12}
	reservations := []model.Reservation{fullMaskReservation(10), fullMaskReservation(12)}

	findings := CheckReservationCompleteness(system, reservations, model.DefaultCoreMaskWidth)

	missing := findings.OfKind(KindMissingAssignment)
	require.Len(t, missing, 1)
	assert.Equal(t, model.ParaID(11), *missing[0].ParaID)
	assert.Len(t, findings.OfKind(KindCountMismatch), 1)
	assert.Len(t, findings, 2)
	assert.Len(t, findings.Hard(), 2)
}

func TestCheckReservationCompleteness_EmptySystemSet(t *testing.T) {
	findings := CheckReservationCompleteness(nil, nil, model.DefaultCoreMaskWidth)

	require.Len(t, findings, 1)
	assert.Equal(t, KindEmptySystemSet, findings[0].Kind)
}

func TestCheckReservationCompleteness_Duplicate(t *testing.T) {
	system := []model.ParaID{10, 11}
	reservations := []model.Reservation{fullMaskReservation(10), fullMaskReservation(10)}

	findings := CheckReservationCompleteness(system, reservations, model.DefaultCoreMaskWidth)

	require.Len(t, findings.OfKind(KindDuplicateAssignment), 1)
	assert.Equal(t, "2", findings.OfKind(KindDuplicateAssignment)[0].Observed)
	require.Len(t, findings.OfKind(KindMissingAssignment), 1)
	assert.Empty(t, findings.OfKind(KindCountMismatch))
}

func TestCheckReservationCompleteness_PartialMask(t *testing.T) {
	mask := model.FullCoreMask(model.DefaultCoreMaskWidth)
	mask[0] = 0x0f
	reservations := []model.Reservation{{{Mask: mask, Assignment: model.TaskAssignment(10)}}}

	findings := CheckReservationCompleteness([]model.ParaID{10}, reservations, model.DefaultCoreMaskWidth)

	require.Len(t, findings, 1)
	assert.Equal(t, KindMaskMismatch, findings[0].Kind)
	assert.Equal(t, "0xffffffffffffffffffff", findings[0].Expected)
	assert.Equal(t, "0x0fffffffffffffffffff", findings[0].Observed)
}

func TestCheckReservationCompleteness_NotSingleEntry(t *testing.T) {
	res := model.Reservation{
		{Mask: model.FullCoreMask(model.DefaultCoreMaskWidth), Assignment: model.TaskAssignment(10)},
		{Mask: model.FullCoreMask(model.DefaultCoreMaskWidth), Assignment: model.TaskAssignment(11)},
	}

	findings := CheckReservationCompleteness([]model.ParaID{10}, []model.Reservation{res}, model.DefaultCoreMaskWidth)

	assert.Len(t, findings.OfKind(KindNotSingleEntry), 1)
	assert.Empty(t, findings.OfKind(KindMissingAssignment))
}

func TestCheckReservationCompleteness_PoolFailsWithoutPanic(t *testing.T) {
	reservations := []model.Reservation{{{
		Mask:       model.FullCoreMask(model.DefaultCoreMaskWidth),
		Assignment: model.Assignment{Kind: model.AssignmentPool},
	}}}

	var findings Findings
	require.NotPanics(t, func() {
		findings = CheckReservationCompleteness([]model.ParaID{10}, reservations, model.DefaultCoreMaskWidth)
	})

	assert.Len(t, findings.OfKind(KindUnsupportedAssignment), 1)
	assert.Len(t, findings.OfKind(KindMissingAssignment), 1)
	assert.True(t, findings.HasHard())
}

// ---------------------------------------------------------------------------
// Lease projection
// ---------------------------------------------------------------------------

func TestExpectedCoretimeLeases_FiltersAndSorts(t *testing.T) {
	before := []model.LegacyLease{
		{ParaID: 2004, Count: 1},
		{ParaID: 1000, Count: 5},
		{ParaID: 2001, Count: 2},
		{ParaID: 2002, Count: 0},
	}

	got := ExpectedCoretimeLeases(lease.DefaultParams(), 999_999+1, before)

	require.Len(t, got, 2)
	assert.Equal(t, model.CoretimeLease{Task: 2001, Until: 30_240}, got[0])
	assert.Equal(t, model.CoretimeLease{Task: 2004, Until: 15_120}, got[1])
}

func TestCheckLeaseProjection_Match(t *testing.T) {
	expected := []model.CoretimeLease{{Task: 2001, Until: 30_240}, {Task: 2004, Until: 15_120}}
	observed := []model.CoretimeLease{{Task: 2004, Until: 15_120}, {Task: 2001, Until: 30_240}}

	assert.Empty(t, CheckLeaseProjection(expected, observed))
}

func TestCheckLeaseProjection_NotFoundAndMismatchAreSoft(t *testing.T) {
	expected := []model.CoretimeLease{{Task: 2001, Until: 30_240}, {Task: 2004, Until: 15_120}}
	observed := []model.CoretimeLease{{Task: 2004, Until: 15_200}}

	findings := CheckLeaseProjection(expected, observed)

	require.Len(t, findings, 2)
	assert.False(t, findings.HasHard())
	assert.Equal(t, KindEntryNotFound, findings[0].Kind)
	assert.Equal(t, model.ParaID(2001), *findings[0].ParaID)
	assert.Equal(t, KindTimeSliceMismatch, findings[1].Kind)
	assert.Equal(t, "15120", findings[1].Expected)
	assert.Equal(t, "15200", findings[1].Observed)
}

func TestCheckLeaseProjection_UnexpectedEntry(t *testing.T) {
	findings := CheckLeaseProjection(nil, []model.CoretimeLease{{Task: 3000, Until: 1}})

	require.Len(t, findings, 1)
	assert.Equal(t, KindUnexpectedEntry, findings[0].Kind)
	assert.Equal(t, SeveritySoft, findings[0].Severity)
}

// ---------------------------------------------------------------------------
// Core count parity and pool sentinel
// ---------------------------------------------------------------------------

func TestCheckCoreCountParity(t *testing.T) {
	five := model.CoreCount(5)
	assert.Empty(t, CheckCoreCountParity(5, &five))

	findings := CheckCoreCountParity(6, &five)
	require.Len(t, findings, 1)
	assert.Equal(t, KindCoreCountMismatch, findings[0].Kind)
	assert.Equal(t, SeverityHard, findings[0].Severity)
	assert.Equal(t, "6", findings[0].Expected)
	assert.Equal(t, "5", findings[0].Observed)
}

func TestCheckCoreCountParity_EmptyInbox(t *testing.T) {
	findings := CheckCoreCountParity(5, nil)

	require.Len(t, findings, 1)
	assert.Equal(t, KindCoreCountInboxEmpty, findings[0].Kind)
	assert.True(t, findings.HasHard())
}

func TestCheckNoUnexpectedPool(t *testing.T) {
	leases := []model.LegacyLease{{ParaID: 1000, Count: 1}, {ParaID: 2001, Count: 3}, {ParaID: 2002, Count: 0}}

	assert.Empty(t, CheckNoUnexpectedPool(leases, 2))

	findings := CheckNoUnexpectedPool(leases, 3)
	require.Len(t, findings, 1)
	assert.Equal(t, KindUnexpectedPool, findings[0].Kind)
	assert.Equal(t, SeveritySoft, findings[0].Severity)
	assert.Equal(t, "3", findings[0].Expected)
	assert.Equal(t, "2", findings[0].Observed)
}

// ---------------------------------------------------------------------------
// Findings accumulator
// ---------------------------------------------------------------------------

func TestFindings_Partition(t *testing.T) {
	fs := Findings{
		{Check: CoreCountParity, Severity: SeverityHard},
		{Check: LeaseProjection, Severity: SeveritySoft},
		{Check: LeaseProjection, Severity: SeveritySoft},
	}

	assert.Len(t, fs.Hard(), 1)
	assert.Len(t, fs.Soft(), 2)
	assert.True(t, fs.HasHard())
	assert.False(t, fs.Soft().HasHard())
	assert.Len(t, fs.ByCheck()[LeaseProjection], 2)
	assert.False(t, Findings(nil).HasHard())
}

func TestParseCheck(t *testing.T) {
	c, err := ParseCheck("core_count_parity")
	require.NoError(t, err)
	assert.Equal(t, CoreCountParity, c)

	_, err = ParseCheck("nope")
	assert.Error(t, err)
}

func TestFinding_String(t *testing.T) {
	f := Finding{
		Check:    ReservationCompleteness,
		Kind:     KindMissingAssignment,
		Severity: SeverityHard,
		Message:  "system chain has no reservation",
		Expected: "1",
		Observed: "0",
		ParaID:   paraRef(1001),
	}
	assert.Equal(t, "[hard] reservation_completeness/missing_assignment: system chain has no reservation (expected=1 observed=0) para_id=1001", f.String())
}
