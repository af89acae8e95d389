// Package coretime reads broker pallet state from the coretime chain.
package coretime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/storage"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/failure"
)

var (
	reservationsKey   = storage.PlainKey("Broker", "Reservations")
	leasesKey         = storage.PlainKey("Broker", "Leases")
	coreCountInboxKey = storage.PlainKey("Broker", "CoreCountInbox")
)

var _ chain.CoretimeReader = (*Reader)(nil)

type Reader struct {
	client    chain.StorageClient
	maskWidth int
	logger    *slog.Logger
}

// NewReader returns a reader decoding core masks of maskWidth bytes.
func NewReader(client chain.StorageClient, maskWidth int, logger *slog.Logger) *Reader {
	if maskWidth <= 0 {
		maskWidth = model.DefaultCoreMaskWidth
	}
	return &Reader{
		client:    client,
		maskWidth: maskWidth,
		logger:    logger.With("component", "coretime_reader"),
	}
}

func (r *Reader) Head(ctx context.Context) (model.BlockRef, error) {
	head, err := r.client.Head(ctx)
	if err != nil {
		return model.BlockRef{}, fmt.Errorf("coretime head: %w", err)
	}
	return head, nil
}

func (r *Reader) Reservations(ctx context.Context, at string) ([]model.Reservation, error) {
	value, err := r.client.GetStorage(ctx, reservationsKey, at)
	if err != nil {
		return nil, fmt.Errorf("read Broker.Reservations: %w", err)
	}
	if value == nil {
		return []model.Reservation{}, nil
	}
	res, err := DecodeReservations(value, r.maskWidth)
	if err != nil {
		return nil, failure.Decode(fmt.Errorf("decode Broker.Reservations: %w", err))
	}
	return res, nil
}

func (r *Reader) Leases(ctx context.Context, at string) ([]model.CoretimeLease, error) {
	value, err := r.client.GetStorage(ctx, leasesKey, at)
	if err != nil {
		return nil, fmt.Errorf("read Broker.Leases: %w", err)
	}
	if value == nil {
		return []model.CoretimeLease{}, nil
	}
	leases, err := DecodeLeases(value)
	if err != nil {
		return nil, failure.Decode(fmt.Errorf("decode Broker.Leases: %w", err))
	}
	r.logger.Debug("coretime leases read", "at", at, "count", len(leases))
	return model.SortCoretimeLeases(leases), nil
}

func (r *Reader) CoreCountInbox(ctx context.Context, at string) (*model.CoreCount, error) {
	value, err := r.client.GetStorage(ctx, coreCountInboxKey, at)
	if err != nil {
		return nil, fmt.Errorf("read Broker.CoreCountInbox: %w", err)
	}
	if value == nil {
		return nil, nil
	}
	cores, err := DecodeCoreCount(value)
	if err != nil {
		return nil, failure.Decode(fmt.Errorf("decode Broker.CoreCountInbox: %w", err))
	}
	return &cores, nil
}
