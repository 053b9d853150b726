package fsm

import (
	"github.com/photonlab/maico/internal/domain/device"
)

// Guard is a predicate attached to the machine that can veto an
// otherwise-legal transition. Guards run in registration order; the
// first non-nil error aborts the transition and is returned verbatim.
type Guard func(from, to device.State) error

// edge is a directed transition between two lifecycle states.
type edge struct {
	from device.State
	to   device.State
}

// allStates lists every lifecycle state; used to allow the error escape
// from anywhere.
var allStates = []device.State{
	device.StateUninitialized,
	device.StateInitialized,
	device.StateReady,
	device.StateLaserOff,
	device.StateLaserOn,
	device.StateError,
	device.StateShutdown,
}

// Machine enforces legal lifecycle transitions. It is not safe for
// concurrent use; callers serialize access (the controller owns exactly
// one Machine and is itself single-threaded).
type Machine struct {
	// current is the present lifecycle state.
	current device.State
	// table is the transition allow-list.
	table map[edge]struct{}
	// guards is the ordered guard chain.
	guards []Guard
}

// New creates a machine in StateUninitialized with the hardware-mandated
// transition table.
func New() *Machine {
	m := &Machine{
		current: device.StateUninitialized,
		table:   make(map[edge]struct{}),
	}

	allowed := []edge{
		{device.StateUninitialized, device.StateInitialized},
		{device.StateInitialized, device.StateReady},
		{device.StateReady, device.StateLaserOff},
		{device.StateLaserOff, device.StateLaserOn},
		{device.StateLaserOn, device.StateLaserOff},
		{device.StateLaserOff, device.StateReady},
		{device.StateReady, device.StateShutdown},
	}
	for _, e := range allowed {
		m.table[e] = struct{}{}
	}

	// The error state is reachable from everywhere.
	for _, s := range allStates {
		m.table[edge{s, device.StateError}] = struct{}{}
	}

	return m
}

// AddGuard appends a guard to the chain. Guards are evaluated in the
// order they were added.
func (m *Machine) AddGuard(g Guard) {
	m.guards = append(m.guards, g)
}

// Current returns the present lifecycle state.
func (m *Machine) Current() device.State {
	return m.current
}

// CanTransition reports whether the edge from the current state to the
// target is allow-listed. It does not consult guards.
func (m *Machine) CanTransition(to device.State) bool {
	_, ok := m.table[edge{m.current, to}]

	return ok
}

// Transition moves the machine to the target state. It fails with an
// invalid-transition error for edges outside the allow-list, then runs
// every guard in order; the first guard failure short-circuits and the
// state is only committed when all guards pass.
func (m *Machine) Transition(to device.State) (device.State, error) {
	if !m.CanTransition(to) {
		return m.current, device.NewInvalidTransition(m.current, to)
	}

	for _, g := range m.guards {
		if err := g(m.current, to); err != nil {
			return m.current, err
		}
	}

	m.current = to

	return m.current, nil
}

// ForceError unconditionally sets the machine to StateError, bypassing
// the allow-list and all guards. Used when a multi-step hardware
// sequence fails partway and the physical device state is unknown.
func (m *Machine) ForceError() {
	m.current = device.StateError
}
