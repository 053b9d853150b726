package ctl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
)

// TestFormatStatus checks the operator report covers states, channels
// and the last error.
func TestFormatStatus(t *testing.T) {
	t.Parallel()

	status := &device.Status{
		State:               device.StateLaserOn,
		IsLaserOn:           true,
		IsCaptureRunning:    true,
		CurrentPowerPercent: 45,
		TemperatureCelsius:  25.0,
		Simulation:          true,
		LastError:           "[SAFETY_GUARD_VIOLATION] power exceeds configured maximum",
		Channels: []device.ChannelStatus{
			{Index: 0, WavelengthNM: 405, IsOn: true, PowerPercent: 45, PMTGain: 0.7, IsInstalled: true},
			{Index: 1, IsInstalled: false},
		},
	}

	report := formatStatus(status)
	require.Contains(t, report, "LaserOn")
	require.Contains(t, report, "running")
	require.Contains(t, report, "simulation")
	require.Contains(t, report, "405 nm")
	require.Contains(t, report, "not installed")
	require.Contains(t, report, "SAFETY_GUARD_VIOLATION")
}

// TestHold verifies both the timed and the until-interrupted variants return cleanly.
func TestHold(t *testing.T) {
	t.Parallel()

	require.NoError(t, hold(context.Background(), 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, hold(ctx, 0))
}
