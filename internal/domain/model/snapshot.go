package model

import "time"

// LegacySnapshot is a point-in-time view of the relay ledger.
type LegacySnapshot struct {
	At                 BlockRef
	Paras              []ParaID
	Leases             []LegacyLease
	MigrationScheduled bool
	ActiveCoreCount    CoreCount
	CapturedAt         time.Time
}

// CoretimeSnapshot is a point-in-time view of the coretime ledger.
// CoreCountInbox is nil when no core count signal is queued.
type CoretimeSnapshot struct {
	At             BlockRef
	Reservations   []Reservation
	Leases         []CoretimeLease
	CoreCountInbox *CoreCount
	CapturedAt     time.Time
}
