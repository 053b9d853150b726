package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/photonlab/maico/internal/domain/device"
)

// ChannelConfig describes one laser channel's startup settings.
type ChannelConfig struct {
	// Index is the zero-based channel (subunit) index.
	Index int `yaml:"index"`
	// DefaultPowerPercent is the power applied when the channel is enabled
	// without an explicit power value.
	DefaultPowerPercent int `yaml:"default_power_percent"`
	// Enabled marks the channel as usable by multi-channel operations.
	Enabled bool `yaml:"enabled"`
}

// Config holds the instrument parameters shared by the maico binaries.
// It is immutable for the lifetime of a controller.
type Config struct {
	// DeviceIndex selects which attached device to open.
	DeviceIndex int `yaml:"device_index"`
	// TriggerSource selects how exposures start: internal, external or software.
	TriggerSource string `yaml:"trigger_source"`
	// OutputTrigger selects the output trigger line signal.
	OutputTrigger string `yaml:"output_trigger"`
	// ExposureTimeMs is the exposure time in milliseconds.
	ExposureTimeMs float64 `yaml:"exposure_time_ms"`
	// MaxPowerPercent is the power ceiling enforced by the safety guards.
	MaxPowerPercent int `yaml:"max_power_percent"`
	// SafetyTimeoutMs bounds hardware waits in the native binding.
	SafetyTimeoutMs int `yaml:"safety_timeout_ms"`
	// Simulation selects the in-memory backend instead of real hardware.
	Simulation bool `yaml:"simulation"`
	// BufferFrameCount is the acquisition buffer size in frames.
	BufferFrameCount int `yaml:"buffer_frame_count"`
	// Channels lists per-channel startup settings in index order.
	Channels []ChannelConfig `yaml:"channels"`
}

const (
	// DefaultConfigFilename is the default filename for instrument settings.
	DefaultConfigFilename = "maico-settings.yaml"

	// DefaultStateFilename is the default filename for the persisted
	// device status snapshot.
	DefaultStateFilename = "maico-state.json"

	// DefaultFilePermissions is the default file permission for settings
	// and state files.
	DefaultFilePermissions = 0o600

	// DefaultExposureTimeMs is used when no exposure time is configured.
	DefaultExposureTimeMs = 10.0

	// DefaultMaxPowerPercent is used when no power ceiling is configured.
	DefaultMaxPowerPercent = 100

	// DefaultSafetyTimeoutMs is used when no hardware timeout is configured.
	DefaultSafetyTimeoutMs = 5000

	// DefaultBufferFrameCount is used when no buffer size is configured.
	DefaultBufferFrameCount = 10

	// DefaultChannelPowerPercent is the default channel power.
	DefaultChannelPowerPercent = 30
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeIndex is returned for a negative device or channel index.
	errNegativeIndex = errors.New("index cannot be negative")
	// errDuplicateChannel is returned when two channel entries share an index.
	errDuplicateChannel = errors.New("duplicate channel index")
)

// triggerSources maps configuration names to trigger source values.
var triggerSources = map[string]device.TriggerSource{
	"internal": device.TriggerSourceInternal,
	"external": device.TriggerSourceExternal,
	"software": device.TriggerSourceSoftware,
}

// outputTriggerKinds maps configuration names to output trigger values.
var outputTriggerKinds = map[string]device.OutputTriggerKind{
	"low":           device.OutputTriggerLow,
	"exposure":      device.OutputTriggerExposure,
	"programmable":  device.OutputTriggerProgrammable,
	"trigger-ready": device.OutputTriggerReady,
	"high":          device.OutputTriggerHigh,
}

// ParseTriggerSource converts a configuration name into a trigger source.
func ParseTriggerSource(s string) (device.TriggerSource, bool) {
	v, ok := triggerSources[s]

	return v, ok
}

// ParseOutputTriggerKind converts a configuration name into an output trigger kind.
func ParseOutputTriggerKind(s string) (device.OutputTriggerKind, bool) {
	v, ok := outputTriggerKinds[s]

	return v, ok
}

// TriggerSourceValue returns the typed trigger source. Call after Validate.
func (c *Config) TriggerSourceValue() device.TriggerSource {
	v, ok := ParseTriggerSource(c.TriggerSource)
	if !ok {
		return device.TriggerSourceSoftware
	}

	return v
}

// OutputTriggerValue returns the typed output trigger kind. Call after Validate.
func (c *Config) OutputTriggerValue() device.OutputTriggerKind {
	v, ok := ParseOutputTriggerKind(c.OutputTrigger)
	if !ok {
		return device.OutputTriggerExposure
	}

	return v
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields and
// fills defaults for everything left unset.
//
//nolint:cyclop // Field-by-field validation is clearer kept in one place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DeviceIndex < 0 {
		return fmt.Errorf("device index %d: %w", cfg.DeviceIndex, errNegativeIndex)
	}

	if cfg.TriggerSource == "" {
		cfg.TriggerSource = device.TriggerSourceSoftware.String()
	}

	if _, ok := ParseTriggerSource(cfg.TriggerSource); !ok {
		return fmt.Errorf("unknown trigger source %q", cfg.TriggerSource)
	}

	if cfg.OutputTrigger == "" {
		cfg.OutputTrigger = device.OutputTriggerExposure.String()
	}

	if _, ok := ParseOutputTriggerKind(cfg.OutputTrigger); !ok {
		return fmt.Errorf("unknown output trigger %q", cfg.OutputTrigger)
	}

	if cfg.ExposureTimeMs == 0 {
		cfg.ExposureTimeMs = DefaultExposureTimeMs
	}

	if cfg.ExposureTimeMs < 0 {
		return fmt.Errorf("exposure time must be positive, got %g", cfg.ExposureTimeMs)
	}

	if cfg.MaxPowerPercent == 0 {
		cfg.MaxPowerPercent = DefaultMaxPowerPercent
	}

	if cfg.MaxPowerPercent < 0 || cfg.MaxPowerPercent > 100 {
		return fmt.Errorf("max power must be within (0, 100], got %d", cfg.MaxPowerPercent)
	}

	if cfg.SafetyTimeoutMs <= 0 {
		cfg.SafetyTimeoutMs = DefaultSafetyTimeoutMs
	}

	if cfg.BufferFrameCount == 0 {
		cfg.BufferFrameCount = DefaultBufferFrameCount
	}

	if cfg.BufferFrameCount < 0 {
		return fmt.Errorf("buffer frame count must be positive, got %d", cfg.BufferFrameCount)
	}

	if len(cfg.Channels) == 0 {
		cfg.Channels = []ChannelConfig{
			{Index: 0, DefaultPowerPercent: DefaultChannelPowerPercent, Enabled: true},
		}
	}

	return validateChannels(cfg)
}

// validateChannels checks channel entries for range and uniqueness and
// defaults unset channel power.
func validateChannels(cfg *Config) error {
	seen := make(map[int]struct{}, len(cfg.Channels))

	for i := range cfg.Channels {
		ch := &cfg.Channels[i]

		if ch.Index < 0 {
			return fmt.Errorf("channel %d: %w", ch.Index, errNegativeIndex)
		}

		if _, ok := seen[ch.Index]; ok {
			return fmt.Errorf("channel %d: %w", ch.Index, errDuplicateChannel)
		}

		seen[ch.Index] = struct{}{}

		if ch.DefaultPowerPercent == 0 {
			ch.DefaultPowerPercent = DefaultChannelPowerPercent
		}

		if ch.DefaultPowerPercent < 0 || ch.DefaultPowerPercent > cfg.MaxPowerPercent {
			return fmt.Errorf(
				"channel %d: default power %d outside [0, %d]",
				ch.Index, ch.DefaultPowerPercent, cfg.MaxPowerPercent,
			)
		}
	}

	return nil
}
