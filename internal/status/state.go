package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/tides/internal/bus"
)

// State represents the client's connection state against the organization API.
type State string

const (
	Booting      State = "BOOTING"
	Unconfigured State = "UNCONFIGURED"
	AuthRequired State = "AUTH_REQUIRED"
	Connecting   State = "CONNECTING"
	Ready        State = "READY"
	Degraded     State = "DEGRADED"
	Error        State = "ERROR"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Booting:      {Unconfigured, AuthRequired, Connecting, Error},
	Unconfigured: {AuthRequired, Error},
	AuthRequired: {Connecting, Unconfigured, Error},
	Connecting:   {Ready, AuthRequired, Degraded, Error},
	Ready:        {Degraded, AuthRequired, Unconfigured, Error},
	Degraded:     {Ready, Connecting, AuthRequired, Error},
	Error:        {Booting, Connecting},
}

// Machine tracks and enforces connection state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

// Ensure moves to the given state unless the machine is already there.
func (m *Machine) Ensure(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == to {
		return nil
	}
	return m.transitionLocked(to)
}

func (m *Machine) transitionLocked(to State) error {
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.KindStatusChanged, StatusChange{From: from, To: to})
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
