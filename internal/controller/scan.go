package controller

import (
	"context"

	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/hardware"
	"github.com/photonlab/maico/internal/logger"
)

// Factory defaults reported when a scan property has never been written.
const (
	defaultScanLines         = 480
	defaultZoom              = 1
	defaultBinning           = 1
	defaultAveragingFrames   = 2
	defaultScanModeSelection = device.ScanModeSequential
)

// ScanConfig reads the scan geometry and averaging settings from the
// device, substituting factory defaults for properties that have never
// been written.
func (c *Controller) ScanConfig(ctx context.Context) (*device.ScanConfig, error) {
	mode, err := c.hw.GetProperty(hardware.PropScanMode)
	if err != nil {
		return nil, c.fail(err)
	}

	cfg := &device.ScanConfig{
		Mode:                 scanModeFromProperty(mode),
		Lines:                intProperty(c.hw, hardware.PropScanLines, defaultScanLines),
		Zoom:                 intProperty(c.hw, hardware.PropZoom, defaultZoom),
		Binning:              intProperty(c.hw, hardware.PropBinning, defaultBinning),
		FrameAveragingFrames: intProperty(c.hw, hardware.PropFrameAveragingFrames, defaultAveragingFrames),
	}

	if enabled, err := c.hw.GetProperty(hardware.PropFrameAveragingEnabled); err == nil {
		cfg.FrameAveragingEnabled = enabled != 0
	}

	logger.DebugKV(ctx, "Scan config read", "mode", cfg.Mode.String(), "lines", cfg.Lines)

	return cfg, nil
}

// SetScanConfig writes the scan geometry and averaging settings to the
// device, aborting on the first failed property write.
func (c *Controller) SetScanConfig(ctx context.Context, cfg *device.ScanConfig) error {
	if cfg == nil {
		return c.fail(device.NewInvalidParameter("scan config is not set", 0))
	}

	writes := []struct {
		id    hardware.PropertyID
		value float64
	}{
		{hardware.PropScanMode, float64(cfg.Mode)},
		{hardware.PropScanLines, float64(cfg.Lines)},
		{hardware.PropZoom, float64(cfg.Zoom)},
		{hardware.PropBinning, float64(cfg.Binning)},
		{hardware.PropFrameAveragingEnabled, boolProperty(cfg.FrameAveragingEnabled)},
		{hardware.PropFrameAveragingFrames, float64(cfg.FrameAveragingFrames)},
	}

	for _, w := range writes {
		if err := c.hw.SetProperty(w.id, w.value); err != nil {
			return c.fail(err)
		}
	}

	logger.InfoKV(ctx, "Scan config applied", "mode", cfg.Mode.String(), "lines", cfg.Lines)

	return nil
}

// scanModeFromProperty maps a raw property value onto a scan mode,
// defaulting when the property has never been written.
func scanModeFromProperty(v float64) device.ScanMode {
	if device.ScanMode(v) == device.ScanModeSimultaneous {
		return device.ScanModeSimultaneous
	}

	return defaultScanModeSelection
}

// intProperty reads a numeric property, substituting the fallback for
// read failures and never-written zero values.
func intProperty(hw hardware.Interface, id hardware.PropertyID, fallback int) int {
	v, err := hw.GetProperty(id)
	if err != nil || v == 0 {
		return fallback
	}

	return int(v)
}

// boolProperty converts a flag to its numeric property representation.
func boolProperty(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
