package safety

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
)

// fixedClock returns a settable clock function for deterministic tests.
func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	current := start

	return &current, func() time.Time {
		return current
	}
}

// TestCheckPowerLimit verifies the power bound invariant: the check
// passes iff 0 <= p <= max.
func TestCheckPowerLimit(t *testing.T) {
	t.Parallel()

	g := New(50)

	require.NoError(t, g.CheckPowerLimit(0))
	require.NoError(t, g.CheckPowerLimit(25))
	require.NoError(t, g.CheckPowerLimit(50))

	err := g.CheckPowerLimit(-1)
	require.Equal(t, device.KindInvalidParameter, device.KindOf(err))

	err = g.CheckPowerLimit(51)
	require.Equal(t, device.KindSafetyGuardViolation, device.KindOf(err))
	require.Contains(t, err.Error(), "requested=51")
	require.Contains(t, err.Error(), "max_allowed=50")
}

// TestCheckExposureTime verifies the exposure bound invariant: the check
// passes iff 0 < e <= 10000.
func TestCheckExposureTime(t *testing.T) {
	t.Parallel()

	g := New(100)

	require.NoError(t, g.CheckExposureTime(0.1))
	require.NoError(t, g.CheckExposureTime(10.0))
	require.NoError(t, g.CheckExposureTime(10000.0))

	err := g.CheckExposureTime(0)
	require.Equal(t, device.KindInvalidParameter, device.KindOf(err))

	err = g.CheckExposureTime(-5)
	require.Equal(t, device.KindInvalidParameter, device.KindOf(err))

	err = g.CheckExposureTime(10000.1)
	require.Equal(t, device.KindSafetyGuardViolation, device.KindOf(err))
}

// TestCheckRapidToggle verifies the cooldown: an immediate second toggle
// is rejected with a positive remaining cooldown and the timestamp is
// not advanced by the rejection; after the interval the toggle passes.
func TestCheckRapidToggle(t *testing.T) {
	t.Parallel()

	g := New(100)
	clock, now := fixedClock(time.Unix(1000, 0))
	g.now = now

	// First toggle always passes.
	require.NoError(t, g.CheckRapidToggle(device.StateLaserOff, device.StateLaserOn))

	// Immediate reverse toggle is throttled.
	*clock = clock.Add(100 * time.Millisecond)

	err := g.CheckRapidToggle(device.StateLaserOn, device.StateLaserOff)
	require.Error(t, err)
	require.Equal(t, device.KindSafetyGuardViolation, device.KindOf(err))

	var devErr *device.Error
	require.ErrorAs(t, err, &devErr)
	require.Equal(t, 400*time.Millisecond, devErr.CooldownRemaining)
	require.Equal(t, MinToggleInterval, devErr.MinInterval)

	// The rejection must not have updated the timestamp: 500ms after the
	// accepted toggle the next one passes even though only 400ms passed
	// since the rejection.
	*clock = clock.Add(400 * time.Millisecond)
	require.NoError(t, g.CheckRapidToggle(device.StateLaserOn, device.StateLaserOff))
}

// TestCheckRapidToggleIgnoresOtherEdges verifies non-toggle transitions
// pass without touching the timer.
func TestCheckRapidToggleIgnoresOtherEdges(t *testing.T) {
	t.Parallel()

	g := New(100)
	clock, now := fixedClock(time.Unix(1000, 0))
	g.now = now

	require.NoError(t, g.CheckRapidToggle(device.StateUninitialized, device.StateInitialized))
	require.NoError(t, g.CheckRapidToggle(device.StateReady, device.StateLaserOff))
	require.True(t, g.lastToggle.IsZero())

	// A toggle, then a non-toggle edge inside the cooldown window: the
	// non-toggle edge must still pass.
	require.NoError(t, g.CheckRapidToggle(device.StateLaserOff, device.StateLaserOn))
	*clock = clock.Add(10 * time.Millisecond)
	require.NoError(t, g.CheckRapidToggle(device.StateReady, device.StateShutdown))
}

// TestResetToggleTimer verifies the administrative reset clears the cooldown.
func TestResetToggleTimer(t *testing.T) {
	t.Parallel()

	g := New(100)
	clock, now := fixedClock(time.Unix(1000, 0))
	g.now = now

	require.NoError(t, g.CheckRapidToggle(device.StateLaserOff, device.StateLaserOn))
	*clock = clock.Add(10 * time.Millisecond)
	require.Error(t, g.CheckRapidToggle(device.StateLaserOn, device.StateLaserOff))

	g.ResetToggleTimer()
	require.NoError(t, g.CheckRapidToggle(device.StateLaserOn, device.StateLaserOff))
}
