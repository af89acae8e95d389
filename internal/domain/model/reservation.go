package model

import (
	"encoding/hex"
	"fmt"
)

// DefaultCoreMaskWidth is the byte width of the broker pallet CoreMask.
const DefaultCoreMaskWidth = 10

type CoreMask []byte

// IsFull reports whether every bit of a mask of the given byte width is set.
func (m CoreMask) IsFull(width int) bool {
	if len(m) != width {
		return false
	}
	for _, b := range m {
		if b != 0xff {
			return false
		}
	}
	return true
}

func (m CoreMask) String() string {
	return "0x" + hex.EncodeToString(m)
}

// FullCoreMask returns the canonical all-ones mask of the given width.
func FullCoreMask(width int) CoreMask {
	m := make(CoreMask, width)
	for i := range m {
		m[i] = 0xff
	}
	return m
}

type AssignmentKind string

const (
	AssignmentIdle AssignmentKind = "Idle"
	AssignmentPool AssignmentKind = "Pool"
	AssignmentTask AssignmentKind = "Task"
)

// Assignment is the tagged CoreAssignment variant. Task is only meaningful
// when Kind is AssignmentTask.
type Assignment struct {
	Kind AssignmentKind `json:"kind"`
	Task ParaID         `json:"task,omitempty"`
}

func TaskAssignment(task ParaID) Assignment {
	return Assignment{Kind: AssignmentTask, Task: task}
}

func (a Assignment) String() string {
	if a.Kind == AssignmentTask {
		return fmt.Sprintf("Task(%d)", a.Task)
	}
	return string(a.Kind)
}

type ScheduleItem struct {
	Mask       CoreMask   `json:"mask"`
	Assignment Assignment `json:"assignment"`
}

// Reservation is one reserved core schedule on the coretime ledger.
type Reservation []ScheduleItem
