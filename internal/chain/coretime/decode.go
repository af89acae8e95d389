package coretime

import (
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/scale"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

// CoreAssignment variant tags.
const (
	assignmentIdle = 0
	assignmentPool = 1
	assignmentTask = 2
)

// DecodeReservations decodes Broker.Reservations,
// Vec<Vec<ScheduleItem{mask: CoreMask, assignment: CoreAssignment}>>.
func DecodeReservations(value []byte, maskWidth int) ([]model.Reservation, error) {
	d := scale.NewDecoder(value)
	n, err := d.Len(1)
	if err != nil {
		return nil, fmt.Errorf("reservations length: %w", err)
	}
	out := make([]model.Reservation, 0, n)
	for i := 0; i < n; i++ {
		items, err := d.Len(maskWidth + 1)
		if err != nil {
			return nil, fmt.Errorf("reservation %d length: %w", i, err)
		}
		res := make(model.Reservation, 0, items)
		for j := 0; j < items; j++ {
			item, err := decodeScheduleItem(d, maskWidth)
			if err != nil {
				return nil, fmt.Errorf("reservation %d item %d: %w", i, j, err)
			}
			res = append(res, item)
		}
		out = append(out, res)
	}
	return out, nil
}

func decodeScheduleItem(d *scale.Decoder, maskWidth int) (model.ScheduleItem, error) {
	mask, err := d.Bytes(maskWidth)
	if err != nil {
		return model.ScheduleItem{}, fmt.Errorf("mask: %w", err)
	}
	tag, err := d.U8()
	if err != nil {
		return model.ScheduleItem{}, fmt.Errorf("assignment: %w", err)
	}
	item := model.ScheduleItem{Mask: model.CoreMask(mask)}
	switch tag {
	case assignmentIdle:
		item.Assignment = model.Assignment{Kind: model.AssignmentIdle}
	case assignmentPool:
		item.Assignment = model.Assignment{Kind: model.AssignmentPool}
	case assignmentTask:
		task, err := d.U32()
		if err != nil {
			return model.ScheduleItem{}, fmt.Errorf("assignment task: %w", err)
		}
		item.Assignment = model.TaskAssignment(model.ParaID(task))
	default:
		return model.ScheduleItem{}, fmt.Errorf("unknown assignment variant %d", tag)
	}
	return item, nil
}

// DecodeLeases decodes Broker.Leases, Vec<LeaseRecordItem{until, task}>.
func DecodeLeases(value []byte) ([]model.CoretimeLease, error) {
	d := scale.NewDecoder(value)
	n, err := d.Len(8)
	if err != nil {
		return nil, fmt.Errorf("leases length: %w", err)
	}
	out := make([]model.CoretimeLease, 0, n)
	for i := 0; i < n; i++ {
		until, err := d.U32()
		if err != nil {
			return nil, fmt.Errorf("lease %d until: %w", i, err)
		}
		task, err := d.U32()
		if err != nil {
			return nil, fmt.Errorf("lease %d task: %w", i, err)
		}
		out = append(out, model.CoretimeLease{Task: model.ParaID(task), Until: model.TimeSlice(until)})
	}
	return out, nil
}

// DecodeCoreCount decodes a CoreIndex (u16).
func DecodeCoreCount(value []byte) (model.CoreCount, error) {
	d := scale.NewDecoder(value)
	v, err := d.U16()
	if err != nil {
		return 0, fmt.Errorf("core count: %w", err)
	}
	return model.CoreCount(v), nil
}
