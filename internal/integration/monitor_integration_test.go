package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/domain/device"
	repo "github.com/photonlab/maico/internal/repository/state"
	"github.com/photonlab/maico/internal/service/ctl"
	"github.com/photonlab/maico/internal/service/monitor"
)

// writeSettings creates a simulation settings file and returns its path.
func writeSettings(t *testing.T, dir string) string {
	t.Helper()

	cfgPath := filepath.Join(dir, "maico-settings.yaml")
	cfg := &config.Config{Simulation: true}
	require.NoError(t, config.Validate(cfg))
	require.NoError(t, config.Save(cfgPath, cfg))

	return cfgPath
}

// TestMonitor_PersistsSnapshots runs the real daemon against the
// simulated backend and verifies snapshots reach the state file.
func TestMonitor_PersistsSnapshots(t *testing.T) {
	t.Parallel()

	var (
		dir       = t.TempDir()
		cfgPath   = writeSettings(t, dir)
		statePath = filepath.Join(dir, "maico-state.json")
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- monitor.Run(ctx, &monitor.Options{
			ConfigPath:   cfgPath,
			StateFile:    statePath,
			PollInterval: 20 * time.Millisecond,
		})
	}()

	repository := repo.NewFileRepository(statePath)

	var snapshot *device.Snapshot

	require.Eventually(t, func() bool {
		loaded, err := repository.Load(ctx)
		if err != nil {
			return false
		}

		snapshot = loaded

		return true
	}, 5*time.Second, 20*time.Millisecond)

	require.NotNil(t, snapshot.Operator)
	require.NotEmpty(t, snapshot.Operator.Hostname)
	require.Equal(t, device.StateLaserOff, snapshot.Status.State)
	require.True(t, snapshot.Status.Simulation)
	require.Len(t, snapshot.Status.Channels, 4)

	cancel()
	require.NoError(t, <-done)
}

// TestMonitor_ReloadsSettings rewrites the settings file under a running
// daemon and verifies it keeps polling after the reconstruction.
func TestMonitor_ReloadsSettings(t *testing.T) {
	t.Parallel()

	var (
		dir       = t.TempDir()
		cfgPath   = writeSettings(t, dir)
		statePath = filepath.Join(dir, "maico-state.json")
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- monitor.Run(ctx, &monitor.Options{
			ConfigPath:   cfgPath,
			StateFile:    statePath,
			PollInterval: 20 * time.Millisecond,
		})
	}()

	repository := repo.NewFileRepository(statePath)

	firstSeen := awaitSnapshot(t, ctx, repository, time.Time{})

	// Rewriting the settings triggers controller reconstruction.
	modified := &config.Config{Simulation: true, MaxPowerPercent: 80}
	require.NoError(t, config.Validate(modified))
	require.NoError(t, config.Save(cfgPath, modified))

	later := awaitSnapshot(t, ctx, repository, firstSeen.Timestamp)
	require.Equal(t, device.StateLaserOff, later.Status.State)

	cancel()
	require.NoError(t, <-done)
}

// awaitSnapshot blocks until a snapshot newer than after is persisted.
//
//nolint:revive // Test helper keeps the testing.T first by convention.
func awaitSnapshot(
	t *testing.T,
	ctx context.Context,
	repository repo.Repository,
	after time.Time,
) *device.Snapshot {
	t.Helper()

	var snapshot *device.Snapshot

	require.Eventually(t, func() bool {
		loaded, err := repository.Load(ctx)
		if err != nil || !loaded.Timestamp.After(after) {
			return false
		}

		snapshot = loaded

		return true
	}, 5*time.Second, 20*time.Millisecond)

	return snapshot
}

// TestCtl_StatusSession runs a complete one-shot status session against
// the simulated backend.
func TestCtl_StatusSession(t *testing.T) {
	t.Parallel()

	cfgPath := writeSettings(t, t.TempDir())

	require.NoError(t, ctl.RunStatus(context.Background(), &ctl.Options{ConfigPath: cfgPath}))
}

// TestCtl_LaserOnSession holds emission briefly and exits clean.
func TestCtl_LaserOnSession(t *testing.T) {
	t.Parallel()

	cfgPath := writeSettings(t, t.TempDir())

	err := ctl.RunLaserOn(
		context.Background(),
		&ctl.Options{ConfigPath: cfgPath},
		0, 40, 30*time.Millisecond,
	)
	require.NoError(t, err)
}
