package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
)

// allowedEdges mirrors the hardware-mandated transition table.
var allowedEdges = map[[2]device.State]bool{
	{device.StateUninitialized, device.StateInitialized}: true,
	{device.StateInitialized, device.StateReady}:         true,
	{device.StateReady, device.StateLaserOff}:            true,
	{device.StateLaserOff, device.StateLaserOn}:          true,
	{device.StateLaserOn, device.StateLaserOff}:          true,
	{device.StateLaserOff, device.StateReady}:            true,
	{device.StateReady, device.StateShutdown}:            true,
}

// atState returns a fresh machine forced to the given state via ForceError
// or walked there through legal edges.
func atState(t *testing.T, s device.State) *Machine {
	t.Helper()

	m := New()
	if s == device.StateError {
		m.ForceError()
		return m
	}

	path := map[device.State][]device.State{
		device.StateUninitialized: {},
		device.StateInitialized:   {device.StateInitialized},
		device.StateReady:         {device.StateInitialized, device.StateReady},
		device.StateLaserOff:      {device.StateInitialized, device.StateReady, device.StateLaserOff},
		device.StateLaserOn: {
			device.StateInitialized, device.StateReady, device.StateLaserOff, device.StateLaserOn,
		},
		device.StateShutdown: {device.StateInitialized, device.StateReady, device.StateShutdown},
	}

	for _, next := range path[s] {
		_, err := m.Transition(next)
		require.NoError(t, err)
	}

	require.Equal(t, s, m.Current())

	return m
}

// TestTransitionTableTotality walks every (from, to) pair: listed edges
// succeed, everything else fails with an invalid-transition error.
func TestTransitionTableTotality(t *testing.T) {
	t.Parallel()

	states := []device.State{
		device.StateUninitialized,
		device.StateInitialized,
		device.StateReady,
		device.StateLaserOff,
		device.StateLaserOn,
		device.StateError,
		device.StateShutdown,
	}

	for _, from := range states {
		for _, to := range states {
			m := atState(t, from)

			legal := allowedEdges[[2]device.State{from, to}] || to == device.StateError
			require.Equal(t, legal, m.CanTransition(to), "edge %s -> %s", from, to)

			got, err := m.Transition(to)
			if legal {
				require.NoError(t, err, "edge %s -> %s", from, to)
				require.Equal(t, to, got)
				require.Equal(t, to, m.Current())
			} else {
				require.Error(t, err, "edge %s -> %s", from, to)
				require.Equal(t, device.KindInvalidStateTransition, device.KindOf(err))
				require.Equal(t, from, m.Current())
			}
		}
	}
}

// TestErrorReachability verifies the error escape exists from every state
// and ForceError wins regardless of guards.
func TestErrorReachability(t *testing.T) {
	t.Parallel()

	states := []device.State{
		device.StateUninitialized,
		device.StateInitialized,
		device.StateReady,
		device.StateLaserOff,
		device.StateLaserOn,
		device.StateError,
		device.StateShutdown,
	}

	for _, s := range states {
		m := atState(t, s)
		require.True(t, m.CanTransition(device.StateError), "from %s", s)

		// Even a guard that rejects everything cannot stop ForceError.
		m.AddGuard(func(_, _ device.State) error {
			return device.NewLimitViolation("veto", 0, 0)
		})
		m.ForceError()
		require.Equal(t, device.StateError, m.Current())
	}
}

// TestGuardOrderAndShortCircuit checks guards run in registration order
// and the first failure is returned verbatim without committing.
func TestGuardOrderAndShortCircuit(t *testing.T) {
	t.Parallel()

	m := New()

	var order []int

	m.AddGuard(func(_, _ device.State) error {
		order = append(order, 1)
		return nil
	})

	veto := device.NewToggleViolation(100, 500)
	m.AddGuard(func(_, _ device.State) error {
		order = append(order, 2)
		return veto
	})
	m.AddGuard(func(_, _ device.State) error {
		order = append(order, 3)
		return nil
	})

	_, err := m.Transition(device.StateInitialized)
	require.Same(t, veto, err)
	require.Equal(t, []int{1, 2}, order)
	require.Equal(t, device.StateUninitialized, m.Current())

	// Guards receive the evaluated edge.
	m2 := New()
	m2.AddGuard(func(from, to device.State) error {
		require.Equal(t, device.StateUninitialized, from)
		require.Equal(t, device.StateInitialized, to)
		return nil
	})

	_, err = m2.Transition(device.StateInitialized)
	require.NoError(t, err)
	require.Equal(t, device.StateInitialized, m2.Current())
}
