// Package snapshot captures point-in-time views of both ledgers. The head
// is pinned once and every item is read at that block hash.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

var now = time.Now

func CaptureLegacy(ctx context.Context, r chain.RelayReader) (*model.LegacySnapshot, error) {
	head, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}

	paras, err := r.Paras(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("legacy snapshot at %d: %w", head.Number, err)
	}
	leases, err := r.Leases(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("legacy snapshot at %d: %w", head.Number, err)
	}
	scheduled, err := r.MigrationScheduled(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("legacy snapshot at %d: %w", head.Number, err)
	}
	cores, err := r.ActiveCoreCount(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("legacy snapshot at %d: %w", head.Number, err)
	}

	return &model.LegacySnapshot{
		At:                 head,
		Paras:              paras,
		Leases:             model.SortLegacyLeases(leases),
		MigrationScheduled: scheduled,
		ActiveCoreCount:    cores,
		CapturedAt:         now().UTC(),
	}, nil
}

func CaptureCoretime(ctx context.Context, r chain.CoretimeReader) (*model.CoretimeSnapshot, error) {
	head, err := r.Head(ctx)
	if err != nil {
		return nil, err
	}

	reservations, err := r.Reservations(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("coretime snapshot at %d: %w", head.Number, err)
	}
	leases, err := r.Leases(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("coretime snapshot at %d: %w", head.Number, err)
	}
	inbox, err := r.CoreCountInbox(ctx, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("coretime snapshot at %d: %w", head.Number, err)
	}

	return &model.CoretimeSnapshot{
		At:             head,
		Reservations:   reservations,
		Leases:         model.SortCoretimeLeases(leases),
		CoreCountInbox: inbox,
		CapturedAt:     now().UTC(),
	}, nil
}
