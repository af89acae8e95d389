package migration

import "fmt"

// Phase is a step of a check run. Runs move strictly forward, one phase at
// a time.
type Phase string

const (
	PhaseInit         Phase = "INIT"
	PhasePreSnapshot  Phase = "PRE_SNAPSHOT"
	PhaseUpgrading    Phase = "UPGRADING"
	PhasePostSnapshot Phase = "POST_SNAPSHOT"
	PhaseChecking     Phase = "CHECKING"
	PhaseReported     Phase = "REPORTED"
)

var phaseOrder = []Phase{
	PhaseInit,
	PhasePreSnapshot,
	PhaseUpgrading,
	PhasePostSnapshot,
	PhaseChecking,
	PhaseReported,
}

func (p Phase) index() int {
	for i, q := range phaseOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p. ok is false for the terminal phase
// and for unknown phases.
func (p Phase) Next() (next Phase, ok bool) {
	i := p.index()
	if i < 0 || i == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[i+1], true
}

type machine struct {
	current Phase
}

func newMachine() *machine {
	return &machine{current: PhaseInit}
}

func (m *machine) advance(to Phase) error {
	next, ok := m.current.Next()
	if !ok || next != to {
		return fmt.Errorf("invalid phase transition %s -> %s", m.current, to)
	}
	m.current = to
	return nil
}
