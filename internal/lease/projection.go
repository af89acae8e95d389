// Package lease projects legacy relay lease counts onto coretime time-slices
// the same way the relay migration computes them when it sends lease
// assignments to the coretime chain.
package lease

import (
	"fmt"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

const (
	DefaultOffset          = 921_600
	DefaultPeriod          = 1_209_600
	DefaultTimeSlicePeriod = 80
)

// Params are the relay slot and broker timing constants.
type Params struct {
	Offset          int64
	Period          int64
	TimeSlicePeriod int64
}

func DefaultParams() Params {
	return Params{
		Offset:          DefaultOffset,
		Period:          DefaultPeriod,
		TimeSlicePeriod: DefaultTimeSlicePeriod,
	}
}

func (p Params) Validate() error {
	if p.Offset < 0 {
		return fmt.Errorf("lease offset must not be negative, got %d", p.Offset)
	}
	if p.Period <= 0 {
		return fmt.Errorf("lease period must be positive, got %d", p.Period)
	}
	if p.TimeSlicePeriod <= 0 {
		return fmt.Errorf("time slice period must be positive, got %d", p.TimeSlicePeriod)
	}
	return nil
}

// Project returns the coretime "valid until" time-slice for a para holding
// leaseCount periods when the migration executes at referenceBlock.
//
// When valid_until is not aligned to a time-slice the result is bumped by a
// whole TimeSlicePeriod, not by one slice. That matches the relay migration
// and must not be changed here.
func (p Params) Project(referenceBlock int64, leaseCount int64) model.TimeSlice {
	leaseIndex := floorDiv(referenceBlock-p.Offset, p.Period)
	validUntil := (leaseIndex + leaseCount) * p.Period

	var roundUp int64
	if validUntil%p.TimeSlicePeriod > 0 {
		roundUp = 1
	}
	return model.TimeSlice(floorDiv(validUntil, p.TimeSlicePeriod) + roundUp*p.TimeSlicePeriod)
}

// Project uses DefaultParams.
func Project(referenceBlock int64, leaseCount int64) model.TimeSlice {
	return DefaultParams().Project(referenceBlock, leaseCount)
}

// floorDiv rounds toward negative infinity; Go's / truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
