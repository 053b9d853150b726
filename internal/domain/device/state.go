package device

// State represents the controller lifecycle state. Exactly one State is
// current at any time; transitions between states are governed by the FSM.
type State int

const (
	// StateUninitialized is the initial state before the hardware library is loaded.
	StateUninitialized State = iota
	// StateInitialized means the hardware library is loaded but no device is open.
	StateInitialized
	// StateReady means the device is open and accepting configuration.
	StateReady
	// StateLaserOff means the device is fully configured with all emission off.
	StateLaserOff
	// StateLaserOn means at least one channel is emitting.
	StateLaserOn
	// StateError is the terminal fault state; no transition leads out of it.
	// Recovery requires constructing a new controller.
	StateError
	// StateShutdown means the device is closed and the library released.
	StateShutdown
)

// String returns a human-readable state name for logs and error messages.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateReady:
		return "Ready"
	case StateLaserOff:
		return "LaserOff"
	case StateLaserOn:
		return "LaserOn"
	case StateError:
		return "Error"
	case StateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// TriggerSource selects how the device starts an exposure.
// Values match the numeric DCAM property values pushed to hardware.
type TriggerSource int

const (
	// TriggerSourceInternal lets the device free-run on its own clock.
	TriggerSourceInternal TriggerSource = 1
	// TriggerSourceExternal triggers exposures from an external signal.
	TriggerSourceExternal TriggerSource = 2
	// TriggerSourceSoftware triggers exposures via FireTrigger calls.
	TriggerSourceSoftware TriggerSource = 3
)

// String returns the lowercase name used in configuration files.
func (t TriggerSource) String() string {
	switch t {
	case TriggerSourceInternal:
		return "internal"
	case TriggerSourceExternal:
		return "external"
	case TriggerSourceSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// OutputTriggerKind selects the signal emitted on the output trigger line.
// Values match the numeric DCAM property values pushed to hardware.
type OutputTriggerKind int

const (
	// OutputTriggerLow holds the line low.
	OutputTriggerLow OutputTriggerKind = 1
	// OutputTriggerExposure mirrors the exposure window.
	OutputTriggerExposure OutputTriggerKind = 2
	// OutputTriggerProgrammable emits a programmable pulse.
	OutputTriggerProgrammable OutputTriggerKind = 3
	// OutputTriggerReady signals trigger readiness.
	OutputTriggerReady OutputTriggerKind = 4
	// OutputTriggerHigh holds the line high.
	OutputTriggerHigh OutputTriggerKind = 5
)

// String returns the lowercase name used in configuration files.
func (o OutputTriggerKind) String() string {
	switch o {
	case OutputTriggerLow:
		return "low"
	case OutputTriggerExposure:
		return "exposure"
	case OutputTriggerProgrammable:
		return "programmable"
	case OutputTriggerReady:
		return "trigger-ready"
	case OutputTriggerHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ScanMode selects how multi-channel scans are interleaved.
type ScanMode int

const (
	// ScanModeSequential scans enabled channels one after another.
	ScanModeSequential ScanMode = 1
	// ScanModeSimultaneous scans all enabled channels at once.
	ScanModeSimultaneous ScanMode = 2
)

// String returns the lowercase name used in configuration files.
func (m ScanMode) String() string {
	switch m {
	case ScanModeSequential:
		return "sequential"
	case ScanModeSimultaneous:
		return "simultaneous"
	default:
		return "unknown"
	}
}
