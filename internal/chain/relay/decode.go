package relay

import (
	"bytes"
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/scale"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

// DecodeParachains decodes Paras.Parachains, a Vec<ParaId>.
func DecodeParachains(value []byte) ([]model.ParaID, error) {
	d := scale.NewDecoder(value)
	n, err := d.Len(4)
	if err != nil {
		return nil, fmt.Errorf("parachains length: %w", err)
	}
	paras := make([]model.ParaID, 0, n)
	for i := 0; i < n; i++ {
		id, err := d.U32()
		if err != nil {
			return nil, fmt.Errorf("parachain %d: %w", i, err)
		}
		paras = append(paras, model.ParaID(id))
	}
	return paras, nil
}

// DecodeLeaseCount decodes a Slots.Leases entry,
// Vec<Option<(AccountId, Balance)>>, as its number of lease periods.
// Vacant periods count; the relay keeps them to preserve the period index.
func DecodeLeaseCount(value []byte) (int, error) {
	d := scale.NewDecoder(value)
	n, err := d.Len(1)
	if err != nil {
		return 0, fmt.Errorf("lease periods length: %w", err)
	}
	return n, nil
}

// AgendaContains reports whether the first scheduled task of a
// Scheduler.Agenda entry carries the given task name.
//
// Only the first task is inspected: decoding past it needs the runtime's
// call and origin types.
func AgendaContains(value []byte, name [32]byte) (bool, error) {
	d := scale.NewDecoder(value)
	n, err := d.Len(1)
	if err != nil {
		return false, fmt.Errorf("agenda length: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	some, err := d.Option()
	if err != nil {
		return false, fmt.Errorf("agenda task: %w", err)
	}
	if !some {
		return false, nil
	}
	named, err := d.Option()
	if err != nil {
		return false, fmt.Errorf("agenda task name: %w", err)
	}
	if !named {
		return false, nil
	}
	got, err := d.Bytes(32)
	if err != nil {
		return false, fmt.Errorf("agenda task name: %w", err)
	}
	return bytes.Equal(got, name[:]), nil
}

// Executor parameter variants of HostConfiguration.executor_params.
const (
	execMaxMemoryPages       = 1
	execStackLogicalMax      = 2
	execStackNativeMax       = 3
	execPrecheckingMaxMemory = 4
	execPvfPrepTimeout       = 5
	execPvfExecTimeout       = 6
	execWasmExtBulkMemory    = 7
)

// DecodeNumCores decodes Configuration.ActiveConfig far enough to read
// scheduler_params.num_cores. The layout is HostConfiguration v12.
func DecodeNumCores(value []byte) (model.CoreCount, error) {
	d := scale.NewDecoder(value)
	skip := func(field string, n int) error {
		if err := d.Skip(n); err != nil {
			return fmt.Errorf("host configuration %s: %w", field, err)
		}
		return nil
	}

	// max_code_size .. hrmp_max_message_num_per_candidate (7 x u32),
	// validation_upgrade_cooldown, validation_upgrade_delay,
	// async_backing_params (2 x u32), max_pov_size,
	// max_downward_message_size, hrmp_max_parachain_outbound_channels.
	if err := skip("limits", 14*4); err != nil {
		return 0, err
	}
	// hrmp_sender_deposit, hrmp_recipient_deposit (u128).
	if err := skip("hrmp deposits", 2*16); err != nil {
		return 0, err
	}
	// hrmp channel limits and max inbound channels (4 x u32).
	if err := skip("hrmp limits", 4*4); err != nil {
		return 0, err
	}
	if err := skipExecutorParams(d); err != nil {
		return 0, err
	}
	// code_retention_period.
	if err := skip("code_retention_period", 4); err != nil {
		return 0, err
	}
	if _, err := d.OptionU32(); err != nil {
		return 0, fmt.Errorf("host configuration max_validators: %w", err)
	}
	// dispute_period .. minimum_validation_upgrade_delay (9 x u32),
	// minimum_backing_votes.
	if err := skip("dispute and approval params", 10*4); err != nil {
		return 0, err
	}
	// node_features: BitVec<u8, Lsb0>.
	bitLen, err := d.Compact()
	if err != nil {
		return 0, fmt.Errorf("host configuration node_features: %w", err)
	}
	if err := skip("node_features", int((bitLen+7)/8)); err != nil {
		return 0, err
	}
	// approval_voting_params.max_approval_coalesce_count.
	if err := skip("approval_voting_params", 4); err != nil {
		return 0, err
	}
	// scheduler_params: group_rotation_frequency, paras_availability_period.
	if err := skip("scheduler_params", 2*4); err != nil {
		return 0, err
	}
	if _, err := d.OptionU32(); err != nil {
		return 0, fmt.Errorf("host configuration max_validators_per_core: %w", err)
	}
	// lookahead.
	if err := skip("scheduler_params lookahead", 4); err != nil {
		return 0, err
	}
	cores, err := d.U32()
	if err != nil {
		return 0, fmt.Errorf("host configuration num_cores: %w", err)
	}
	return model.CoreCount(cores), nil
}

func skipExecutorParams(d *scale.Decoder) error {
	n, err := d.Len(1)
	if err != nil {
		return fmt.Errorf("host configuration executor_params: %w", err)
	}
	for i := 0; i < n; i++ {
		tag, err := d.U8()
		if err != nil {
			return fmt.Errorf("executor param %d: %w", i, err)
		}
		var size int
		switch tag {
		case execMaxMemoryPages, execStackLogicalMax, execStackNativeMax:
			size = 4
		case execPrecheckingMaxMemory:
			size = 8
		case execPvfPrepTimeout, execPvfExecTimeout:
			size = 1 + 8
		case execWasmExtBulkMemory:
			size = 0
		default:
			return fmt.Errorf("executor param %d: unknown variant %d", i, tag)
		}
		if err := d.Skip(size); err != nil {
			return fmt.Errorf("executor param %d: %w", i, err)
		}
	}
	return nil
}
