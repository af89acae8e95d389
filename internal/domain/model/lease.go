package model

import "sort"

// LegacyLease is the number of remaining lease periods a para holds on the
// relay ledger.
type LegacyLease struct {
	ParaID ParaID `json:"para_id"`
	Count  int    `json:"lease_count"`
}

// CoretimeLease is a lease record on the coretime ledger.
type CoretimeLease struct {
	Task  ParaID    `json:"task"`
	Until TimeSlice `json:"until"`
}

// SortLegacyLeases returns a copy of leases sorted by ParaID.
func SortLegacyLeases(leases []LegacyLease) []LegacyLease {
	out := append([]LegacyLease(nil), leases...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ParaID < out[j].ParaID
	})
	return out
}

// SortCoretimeLeases returns a copy of leases sorted by task.
func SortCoretimeLeases(leases []CoretimeLease) []CoretimeLease {
	out := append([]CoretimeLease(nil), leases...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Task < out[j].Task
	})
	return out
}

// SystemChains returns the system chain para ids present in leases, in
// lease order.
func SystemChains(leases []LegacyLease) []ParaID {
	paras := make([]ParaID, 0, len(leases))
	for _, l := range leases {
		if l.ParaID.IsSystemChain() {
			paras = append(paras, l.ParaID)
		}
	}
	return paras
}

// ActiveLeaseCount returns the number of records holding at least one lease
// period.
func ActiveLeaseCount(leases []LegacyLease) int {
	n := 0
	for _, l := range leases {
		if l.Count > 0 {
			n++
		}
	}
	return n
}
