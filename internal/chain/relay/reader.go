// Package relay reads the legacy parachain lease state from a relay chain.
package relay

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/storage"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/failure"
)

// MigrationTaskName is the scheduler task name of the coretime migration
// call queued by the relay runtime upgrade.
const MigrationTaskName = "87a871b4d621f0b973475aafcc32610bd7688f1502338acd00ee488ac3620f4c"

var (
	parachainsKey   = storage.PlainKey("Paras", "Parachains")
	leasesPrefix    = storage.PlainKey("Slots", "Leases")
	agendaPrefix    = storage.PlainKey("Scheduler", "Agenda")
	activeConfigKey = storage.PlainKey("Configuration", "ActiveConfig")
)

var _ chain.RelayReader = (*Reader)(nil)

type Reader struct {
	client   chain.StorageClient
	taskName [32]byte
	logger   *slog.Logger
}

func NewReader(client chain.StorageClient, logger *slog.Logger) *Reader {
	r := &Reader{
		client: client,
		logger: logger.With("component", "relay_reader"),
	}
	name, _ := hex.DecodeString(MigrationTaskName)
	copy(r.taskName[:], name)
	return r
}

func (r *Reader) Head(ctx context.Context) (model.BlockRef, error) {
	head, err := r.client.Head(ctx)
	if err != nil {
		return model.BlockRef{}, fmt.Errorf("relay head: %w", err)
	}
	return head, nil
}

func (r *Reader) Paras(ctx context.Context, at string) ([]model.ParaID, error) {
	value, err := r.client.GetStorage(ctx, parachainsKey, at)
	if err != nil {
		return nil, fmt.Errorf("read Paras.Parachains: %w", err)
	}
	if value == nil {
		return []model.ParaID{}, nil
	}
	paras, err := DecodeParachains(value)
	if err != nil {
		return nil, failure.Decode(fmt.Errorf("decode Paras.Parachains: %w", err))
	}
	return paras, nil
}

func (r *Reader) Leases(ctx context.Context, at string) ([]model.LegacyLease, error) {
	keys, err := r.client.GetKeys(ctx, leasesPrefix, at)
	if err != nil {
		return nil, fmt.Errorf("list Slots.Leases: %w", err)
	}

	leases := make([]model.LegacyLease, 0, len(keys))
	for _, key := range keys {
		suffix, err := storage.MapKeySuffix(key, storage.Twox64Concat)
		if err != nil || len(suffix) != 4 {
			return nil, failure.Decode(fmt.Errorf("invalid para id in Slots.Leases key %s", storage.Hex(key)))
		}
		para := model.ParaID(binary.LittleEndian.Uint32(suffix))

		value, err := r.client.GetStorage(ctx, key, at)
		if err != nil {
			return nil, fmt.Errorf("read Slots.Leases(%d): %w", para, err)
		}
		count, err := DecodeLeaseCount(value)
		if err != nil {
			return nil, failure.Decode(fmt.Errorf("decode Slots.Leases(%d): %w", para, err))
		}
		leases = append(leases, model.LegacyLease{ParaID: para, Count: count})
	}

	r.logger.Debug("legacy leases read", "at", at, "count", len(leases))
	return model.SortLegacyLeases(leases), nil
}

func (r *Reader) MigrationScheduled(ctx context.Context, at string) (bool, error) {
	keys, err := r.client.GetKeys(ctx, agendaPrefix, at)
	if err != nil {
		return false, fmt.Errorf("list Scheduler.Agenda: %w", err)
	}
	for _, key := range keys {
		value, err := r.client.GetStorage(ctx, key, at)
		if err != nil {
			return false, fmt.Errorf("read Scheduler.Agenda: %w", err)
		}
		found, err := AgendaContains(value, r.taskName)
		if err != nil {
			return false, failure.Decode(fmt.Errorf("decode Scheduler.Agenda %s: %w", storage.Hex(key), err))
		}
		if found {
			r.logger.Debug("migration task found in agenda", "at", at, "key", storage.Hex(key))
			return true, nil
		}
	}
	return false, nil
}

func (r *Reader) ActiveCoreCount(ctx context.Context, at string) (model.CoreCount, error) {
	value, err := r.client.GetStorage(ctx, activeConfigKey, at)
	if err != nil {
		return 0, fmt.Errorf("read Configuration.ActiveConfig: %w", err)
	}
	if value == nil {
		return 0, failure.Decode(errors.New("empty Configuration.ActiveConfig"))
	}
	cores, err := DecodeNumCores(value)
	if err != nil {
		return 0, failure.Decode(fmt.Errorf("decode Configuration.ActiveConfig: %w", err))
	}
	return cores, nil
}
