package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/hardware"
)

// TestChannelAggregate verifies that capture and the lifecycle state
// follow the "any channel on" aggregate, not individual channel calls.
func TestChannelAggregate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, sim := initialized(t, 100)

	// First channel on: aggregate 0 -> 1, capture starts.
	require.NoError(t, c.SetChannelEnabled(ctx, 1, true, 40))
	require.Equal(t, device.StateLaserOn, c.State())
	require.True(t, sim.IsCaptureRunning())

	// Second channel on: aggregate stays 1, nothing retriggers.
	require.NoError(t, c.SetChannelEnabled(ctx, 2, true, 25))
	require.Equal(t, device.StateLaserOn, c.State())
	require.True(t, sim.IsCaptureRunning())

	status := c.Status(ctx)
	require.True(t, status.Channels[1].IsOn)
	require.True(t, status.Channels[2].IsOn)
	require.Equal(t, 40, status.Channels[1].PowerPercent)
	require.Equal(t, 25, status.Channels[2].PowerPercent)

	// One channel off while another remains: capture keeps running.
	require.NoError(t, c.SetChannelEnabled(ctx, 1, false, 0))
	require.Equal(t, device.StateLaserOn, c.State())
	require.True(t, sim.IsCaptureRunning())

	// Last channel off: aggregate 1 -> 0, capture stops.
	require.NoError(t, c.SetChannelEnabled(ctx, 2, false, 0))
	require.Equal(t, device.StateLaserOff, c.State())
	require.False(t, sim.IsCaptureRunning())
}

// TestChannelMixedWithLaserOff verifies the aggregate resynchronizes the
// lifecycle no matter which API path armed the channels: LaserOff after
// a per-channel enable disarms the active channel and the aggregate
// logic picks up the remaining one.
func TestChannelMixedWithLaserOff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, sim := initialized(t, 100)

	require.NoError(t, c.LaserOn(ctx, 0, 30))
	require.NoError(t, c.SetChannelEnabled(ctx, 3, true, 20))

	// LaserOff disarms only the active channel (3, the last enabled one);
	// channel 0 stays armed.
	require.NoError(t, c.LaserOff(ctx))

	control, err := sim.SubunitControl(0)
	require.NoError(t, err)
	require.Equal(t, hardware.ControlOn, control)

	// A follow-up channel call resynchronizes state with the aggregate.
	require.NoError(t, c.SetChannelEnabled(ctx, 0, false, 0))
	require.Equal(t, device.StateLaserOff, c.State())
	require.False(t, sim.IsCaptureRunning())
}

// TestSetChannelEnabledRejections covers state, install and guard checks.
func TestSetChannelEnabledRejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Before initialize.
	c, _ := newSimController(t, 100)
	err := c.SetChannelEnabled(ctx, 0, true, 30)
	require.Equal(t, device.KindInvalidStateTransition, device.KindOf(err))

	c, sim := initialized(t, 50)

	// Absent channel.
	err = c.SetChannelEnabled(ctx, 99, true, 30)
	require.Equal(t, device.KindSubunitNotInstalled, device.KindOf(err))

	// Over the power ceiling: rejected before any register is touched.
	err = c.SetChannelEnabled(ctx, 0, true, 80)
	require.Equal(t, device.KindSafetyGuardViolation, device.KindOf(err))

	control, err := sim.SubunitControl(0)
	require.NoError(t, err)
	require.Equal(t, hardware.ControlOff, control)
	require.Equal(t, device.StateLaserOff, c.State())
}

// TestSetChannelPower verifies the per-channel power register write and
// the active-channel cache.
func TestSetChannelPower(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, sim := initialized(t, 100)

	require.NoError(t, c.SetChannelPower(ctx, 2, 35))

	power, err := sim.SubunitPower(2)
	require.NoError(t, err)
	require.Equal(t, 35, power)

	// Active channel writes update the reported current power.
	require.NoError(t, c.LaserOn(ctx, 1, 40))
	require.NoError(t, c.SetChannelPower(ctx, 1, 55))
	require.Equal(t, 55, c.Status(ctx).CurrentPowerPercent)

	// Non-active channel writes do not.
	require.NoError(t, c.SetChannelPower(ctx, 2, 10))
	require.Equal(t, 55, c.Status(ctx).CurrentPowerPercent)

	// Guard and install checks apply here too.
	err = c.SetChannelPower(ctx, 1, 150)
	require.Equal(t, device.KindSafetyGuardViolation, device.KindOf(err))
	err = c.SetChannelPower(ctx, 99, 10)
	require.Equal(t, device.KindSubunitNotInstalled, device.KindOf(err))
}
