package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photonlab/maico/internal/domain/device"
)

// TestValidate checks defaulting and range validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	require.Error(t, Validate(nil))

	// Empty config gets full defaults.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.Equal(t, "software", cfg.TriggerSource)
	require.Equal(t, "exposure", cfg.OutputTrigger)
	require.InEpsilon(t, DefaultExposureTimeMs, cfg.ExposureTimeMs, 1e-9)
	require.Equal(t, DefaultMaxPowerPercent, cfg.MaxPowerPercent)
	require.Equal(t, DefaultSafetyTimeoutMs, cfg.SafetyTimeoutMs)
	require.Equal(t, DefaultBufferFrameCount, cfg.BufferFrameCount)
	require.Len(t, cfg.Channels, 1)
	require.Equal(t, DefaultChannelPowerPercent, cfg.Channels[0].DefaultPowerPercent)

	// Bad trigger source.
	cfg = &Config{TriggerSource: "telepathy"}
	require.Error(t, Validate(cfg))

	// Negative device index.
	cfg = &Config{DeviceIndex: -1}
	require.Error(t, Validate(cfg))

	// Power ceiling above 100.
	cfg = &Config{MaxPowerPercent: 120}
	require.Error(t, Validate(cfg))

	// Duplicate channel index.
	cfg = &Config{
		Channels: []ChannelConfig{
			{Index: 0, DefaultPowerPercent: 30},
			{Index: 0, DefaultPowerPercent: 40},
		},
	}
	require.Error(t, Validate(cfg))

	// Channel default power above the ceiling.
	cfg = &Config{
		MaxPowerPercent: 50,
		Channels: []ChannelConfig{
			{Index: 0, DefaultPowerPercent: 80},
		},
	}
	require.Error(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		DeviceIndex:     0,
		TriggerSource:   "internal",
		OutputTrigger:   "high",
		ExposureTimeMs:  20.5,
		MaxPowerPercent: 80,
		Simulation:      true,
		Channels: []ChannelConfig{
			{Index: 0, DefaultPowerPercent: 30, Enabled: true},
			{Index: 2, DefaultPowerPercent: 45, Enabled: false},
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.TriggerSource, loaded.TriggerSource)
	require.Equal(t, cfg.OutputTrigger, loaded.OutputTrigger)
	require.InEpsilon(t, cfg.ExposureTimeMs, loaded.ExposureTimeMs, 1e-9)
	require.Equal(t, cfg.MaxPowerPercent, loaded.MaxPowerPercent)
	require.True(t, loaded.Simulation)
	require.Equal(t, cfg.Channels, loaded.Channels)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestTypedAccessors verifies the enum conversions used by the controller.
func TestTypedAccessors(t *testing.T) {
	t.Parallel()

	cfg := &Config{TriggerSource: "external", OutputTrigger: "trigger-ready"}
	require.NoError(t, Validate(cfg))

	require.Equal(t, device.TriggerSourceExternal, cfg.TriggerSourceValue())
	require.Equal(t, device.OutputTriggerReady, cfg.OutputTriggerValue())

	src, ok := ParseTriggerSource("software")
	require.True(t, ok)
	require.Equal(t, device.TriggerSourceSoftware, src)

	_, ok = ParseTriggerSource("none")
	require.False(t, ok)
}
