// Package chain defines the point-in-time readers over the relay and
// coretime ledgers. Every read except Head is pinned to a block hash.
package chain

import (
	"context"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

//go:generate mockgen -destination=mocks/mock_reader.go -package=mocks . RelayReader,CoretimeReader

// RelayReader reads the legacy lease state from the relay chain.
type RelayReader interface {
	Head(ctx context.Context) (model.BlockRef, error)

	// Paras returns the registered parachains in storage order.
	Paras(ctx context.Context, at string) ([]model.ParaID, error)

	// Leases returns one record per para in Slots.Leases, sorted by ParaID.
	Leases(ctx context.Context, at string) ([]model.LegacyLease, error)

	// MigrationScheduled reports whether the coretime migration call is
	// queued in the scheduler agenda.
	MigrationScheduled(ctx context.Context, at string) (bool, error)

	// ActiveCoreCount returns the configured number of cores.
	ActiveCoreCount(ctx context.Context, at string) (model.CoreCount, error)
}

// CoretimeReader reads the broker pallet state from the coretime chain.
type CoretimeReader interface {
	Head(ctx context.Context) (model.BlockRef, error)

	Reservations(ctx context.Context, at string) ([]model.Reservation, error)

	// Leases returns the broker lease records sorted by task.
	Leases(ctx context.Context, at string) ([]model.CoretimeLease, error)

	// CoreCountInbox returns nil when no core count is queued.
	CoreCountInbox(ctx context.Context, at string) (*model.CoreCount, error)
}

// StorageClient is the storage RPC surface the readers are built on.
type StorageClient interface {
	Head(ctx context.Context) (model.BlockRef, error)
	GetStorage(ctx context.Context, key []byte, at string) ([]byte, error)
	GetKeys(ctx context.Context, prefix []byte, at string) ([][]byte, error)
}
