package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal snapshot.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "maico-state.json")
	repo := NewFileRepository(file)

	want := &device.Snapshot{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Operator: &device.Operator{
			Hostname: "scope-pc-01",
			Username: "imaging",
		},
		Status: &device.Status{
			State:               device.StateLaserOn,
			IsLaserOn:           true,
			IsCaptureRunning:    true,
			CurrentPowerPercent: 45,
			TemperatureCelsius:  25.0,
			Simulation:          true,
			Channels: []device.ChannelStatus{
				{Index: 0, WavelengthNM: 405, IsOn: true, PowerPercent: 45, PMTGain: 0.7, IsInstalled: true},
				{Index: 1, WavelengthNM: 488, PMTGain: 0.7, IsInstalled: true},
			},
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Timestamp.Unix(), got.Timestamp.Unix())
	require.Equal(t, want.Operator, got.Operator)
	require.Equal(t, want.Status, got.Status)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_CorruptFile verifies a decode error surfaces instead of a zero snapshot.
func TestFileRepository_CorruptFile(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "maico-state.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	repo := NewFileRepository(file)
	s, err := repo.Load(context.Background())
	require.Error(t, err)
	require.Nil(t, s)
}
