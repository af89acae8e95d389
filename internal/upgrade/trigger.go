// Package upgrade performs a relay runtime upgrade on a chopsticks fork.
//
// The upgrade is authorised by injecting a Root-origin
// System.authorize_upgrade call into the scheduler agenda for the next
// block, then applied with an unsigned System.apply_authorized_upgrade
// extrinsic carrying the full code.
package upgrade

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/scale"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/failure"
)

// frame_system call indices.
const (
	systemPallet               = 0x00
	callAuthorizeUpgrade       = 0x09
	callApplyAuthorizedUpgrade = 0x0b
)

// extrinsicV4Unsigned is the version byte of an unsigned v4 extrinsic.
const extrinsicV4Unsigned = 0x04

// Client is the dev RPC surface the trigger drives.
type Client interface {
	Head(ctx context.Context) (model.BlockRef, error)
	DevSetStorage(ctx context.Context, values interface{}) error
	DevNewBlock(ctx context.Context) (string, error)
	SubmitExtrinsic(ctx context.Context, extrinsic []byte) (string, error)
}

type Result struct {
	CodeHash      string            `json:"code_hash"`
	CodeSize      int               `json:"code_size"`
	ScheduledAt   model.BlockNumber `json:"scheduled_at"`
	ExtrinsicHash string            `json:"extrinsic_hash"`
	UpgradeBlock  string            `json:"upgrade_block"`
}

type Trigger struct {
	client   Client
	readFile func(string) ([]byte, error)
	logger   *slog.Logger
}

func NewTrigger(client Client, logger *slog.Logger) *Trigger {
	return &Trigger{
		client:   client,
		readFile: os.ReadFile,
		logger:   logger.With("component", "upgrade_trigger"),
	}
}

// Upgrade returns once the upgrade extrinsic has been included in a block.
func (t *Trigger) Upgrade(ctx context.Context, runtimePath string) (*Result, error) {
	code, err := t.readFile(runtimePath)
	if err != nil {
		return nil, failure.Setup(fmt.Errorf("read runtime image: %w", err))
	}
	if len(code) == 0 {
		return nil, failure.Setup(fmt.Errorf("runtime image %s is empty", runtimePath))
	}
	hash := CodeHash(code)

	head, err := t.client.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("read relay head: %w", err)
	}
	target := head.Number + 1

	t.logger.Info("authorizing upgrade",
		"code_hash", "0x"+hex.EncodeToString(hash[:]),
		"code_size", len(code),
		"scheduled_at", target,
	)
	if err := t.client.DevSetStorage(ctx, AgendaInjection(target, AuthorizeUpgradeCall(hash))); err != nil {
		return nil, fmt.Errorf("schedule authorize_upgrade: %w", err)
	}
	if _, err := t.client.DevNewBlock(ctx); err != nil {
		return nil, fmt.Errorf("build authorization block: %w", err)
	}

	extHash, err := t.client.SubmitExtrinsic(ctx, ApplyAuthorizedUpgradeExtrinsic(code))
	if err != nil {
		return nil, fmt.Errorf("submit apply_authorized_upgrade: %w", err)
	}
	block, err := t.client.DevNewBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("build upgrade block: %w", err)
	}

	t.logger.Info("upgrade applied", "extrinsic_hash", extHash, "block", block)
	return &Result{
		CodeHash:      "0x" + hex.EncodeToString(hash[:]),
		CodeSize:      len(code),
		ScheduledAt:   target,
		ExtrinsicHash: extHash,
		UpgradeBlock:  block,
	}, nil
}

func CodeHash(code []byte) [32]byte {
	return blake2b.Sum256(code)
}

// AuthorizeUpgradeCall encodes System.authorize_upgrade(code_hash).
func AuthorizeUpgradeCall(hash [32]byte) []byte {
	call := []byte{systemPallet, callAuthorizeUpgrade}
	return append(call, hash[:]...)
}

// ApplyAuthorizedUpgradeExtrinsic encodes an unsigned
// System.apply_authorized_upgrade(code) extrinsic.
func ApplyAuthorizedUpgradeExtrinsic(code []byte) []byte {
	payload := []byte{extrinsicV4Unsigned, systemPallet, callApplyAuthorizedUpgrade}
	payload = scale.AppendBytes(payload, code)
	return scale.AppendBytes(nil, payload)
}

// AgendaInjection is the chopsticks dev_setStorage payload that schedules a
// Root-origin inline call at block.
func AgendaInjection(block model.BlockNumber, call []byte) map[string]interface{} {
	task := map[string]interface{}{
		"call":   map[string]string{"Inline": "0x" + hex.EncodeToString(call)},
		"origin": map[string]string{"system": "Root"},
	}
	return map[string]interface{}{
		"scheduler": map[string]interface{}{
			"agenda": []interface{}{
				[]interface{}{
					[]interface{}{uint32(block)},
					[]interface{}{task},
				},
			},
		},
	}
}
