package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreMask_IsFull(t *testing.T) {
	assert.True(t, FullCoreMask(DefaultCoreMaskWidth).IsFull(DefaultCoreMaskWidth))
	assert.Equal(t, "0xffffffffffffffffffff", FullCoreMask(DefaultCoreMaskWidth).String())

	partial := FullCoreMask(DefaultCoreMaskWidth)
	partial[9] = 0xfe
	assert.False(t, partial.IsFull(DefaultCoreMaskWidth))

	assert.False(t, FullCoreMask(8).IsFull(DefaultCoreMaskWidth))
	assert.False(t, CoreMask(nil).IsFull(DefaultCoreMaskWidth))
}

func TestAssignment_String(t *testing.T) {
	assert.Equal(t, "Task(1000)", TaskAssignment(1000).String())
	assert.Equal(t, "Pool", Assignment{Kind: AssignmentPool}.String())
	assert.Equal(t, "Idle", Assignment{Kind: AssignmentIdle}.String())
}
