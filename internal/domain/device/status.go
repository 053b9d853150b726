package device

// ChannelStatus is a point-in-time snapshot of a single laser channel.
type ChannelStatus struct {
	// Index is the zero-based channel (subunit) index.
	Index int
	// WavelengthNM is the emission wavelength in nanometres.
	WavelengthNM int
	// IsOn reports whether the channel control register is on.
	IsOn bool
	// PowerPercent is the configured emission power in percent.
	PowerPercent int
	// PMTGain is the photomultiplier gain of the channel's detector.
	PMTGain float64
	// IsInstalled reports whether the channel is physically present.
	IsInstalled bool
}

// Status is an aggregate snapshot of the whole controller. It is copied
// out on every query and never aliases controller state.
type Status struct {
	// State is the controller lifecycle state at snapshot time.
	State State
	// IsLaserOn reports whether any channel is emitting.
	IsLaserOn bool
	// IsCaptureRunning reports whether the acquisition loop is active.
	// A channel only physically emits while this is true.
	IsCaptureRunning bool
	// CurrentPowerPercent is the active channel's power in percent.
	CurrentPowerPercent int
	// TemperatureCelsius is the sensor temperature.
	TemperatureCelsius float64
	// Channels holds per-channel snapshots in index order.
	Channels []ChannelStatus
	// Simulation reports whether the simulated backend is in use.
	Simulation bool
	// LastError is the text of the most recent error, empty when none.
	LastError string
}

// Clone returns a deep copy of the status to avoid leaking internal references.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.Channels = make([]ChannelStatus, len(s.Channels))
	copy(cloned.Channels, s.Channels)

	return &cloned
}

// ScanConfig describes the scan geometry and averaging settings.
type ScanConfig struct {
	// Mode selects sequential or simultaneous channel scanning.
	Mode ScanMode
	// Lines is the number of scan lines per frame.
	Lines int
	// Zoom is the optical zoom factor.
	Zoom int
	// Binning is the pixel binning factor.
	Binning int
	// FrameAveragingEnabled toggles rolling frame averaging.
	FrameAveragingEnabled bool
	// FrameAveragingFrames is the number of frames averaged when enabled.
	FrameAveragingFrames int
}
