package hardware

// PropertyID identifies a numeric device property. Values follow the
// DCAM property id scheme; the MAICO-specific scan properties live in
// the vendor extension range.
type PropertyID int

const (
	// PropTriggerSource selects the exposure trigger source.
	PropTriggerSource PropertyID = 0x00100110
	// PropOutputTriggerKind selects the output trigger line signal.
	PropOutputTriggerKind PropertyID = 0x001A0220
	// PropExposureTime is the exposure time in seconds.
	PropExposureTime PropertyID = 0x001F0110
	// PropSensorTemperature is the sensor temperature in Celsius.
	PropSensorTemperature PropertyID = 0x00200310
	// PropScanMode selects sequential or simultaneous channel scanning.
	PropScanMode PropertyID = 0x00C00110
	// PropScanLines is the number of scan lines per frame.
	PropScanLines PropertyID = 0x00C00120
	// PropZoom is the optical zoom factor.
	PropZoom PropertyID = 0x00C00130
	// PropBinning is the pixel binning factor.
	PropBinning PropertyID = 0x00C00140
	// PropFrameAveragingEnabled toggles rolling frame averaging.
	PropFrameAveragingEnabled PropertyID = 0x00C00150
	// PropFrameAveragingFrames is the number of frames averaged.
	PropFrameAveragingFrames PropertyID = 0x00C00160
)

// SubunitControl is the value of a channel's control register.
type SubunitControl int

const (
	// ControlNotInstalled means no emitter is present at the index.
	ControlNotInstalled SubunitControl = 0
	// ControlOff means the emitter is present but not driven.
	ControlOff SubunitControl = 1
	// ControlOn means the emitter is driven. Physical emission also
	// requires the capture loop to be running.
	ControlOn SubunitControl = 2
)

// Status codes reported by the native library, carried into hardware
// errors for diagnostics.
const (
	// CodeSuccess is the library's success status.
	CodeSuccess = 1
	// CodeNotReady means the library is not initialized.
	CodeNotReady = -2147483131
	// CodeNoCamera means no device exists at the requested index.
	CodeNoCamera = -2147483130
	// CodeInvalidSubunit means the subunit index is out of range.
	CodeInvalidSubunit = -2147483110
	// CodeNoBuffer means capture was started without an allocated buffer.
	CodeNoBuffer = -2147482624
	// CodeUnloaded means the native library could not be loaded.
	CodeUnloaded = -2147483646
)

// Interface is the contract between the controller and the instrument.
// All calls are blocking and issued strictly in sequence by the
// controller; implementations are not required to be thread-safe.
type Interface interface {
	// InitLibrary loads the vendor library and returns the number of
	// attached devices. Initializing twice is a no-op.
	InitLibrary() (int, error)
	// UninitLibrary releases the vendor library.
	UninitLibrary() error

	// OpenDevice opens the device at the given index.
	OpenDevice(index int) error
	// CloseDevice closes the open device; closing when none is open is a no-op.
	CloseDevice() error

	// GetProperty reads a numeric device property.
	GetProperty(id PropertyID) (float64, error)
	// SetProperty writes a numeric device property.
	SetProperty(id PropertyID, value float64) error

	// AllocBuffer allocates an acquisition buffer of frameCount frames.
	AllocBuffer(frameCount int) error
	// ReleaseBuffer releases the acquisition buffer.
	ReleaseBuffer() error

	// StartCapture starts the continuous acquisition loop.
	StartCapture() error
	// StopCapture stops the acquisition loop; stopping an idle loop is a no-op.
	StopCapture() error
	// IsCaptureRunning reports whether the acquisition loop is active.
	IsCaptureRunning() bool
	// FireTrigger fires a software trigger into the running capture.
	FireTrigger() error

	// SubunitCount returns the number of channel slots on the device.
	SubunitCount() (int, error)
	// SubunitControl reads a channel's control register. An absent
	// channel reports ControlNotInstalled rather than an error.
	SubunitControl(index int) (SubunitControl, error)
	// SetSubunitControl writes a channel's control register.
	SetSubunitControl(index int, control SubunitControl) error
	// SubunitPower reads a channel's emission power in percent.
	SubunitPower(index int) (int, error)
	// SetSubunitPower writes a channel's emission power in percent.
	SetSubunitPower(index, powerPercent int) error
	// SubunitPMTGain reads a channel's photomultiplier gain.
	SubunitPMTGain(index int) (float64, error)
	// SetSubunitPMTGain writes a channel's photomultiplier gain.
	SetSubunitPMTGain(index int, gain float64) error
	// SubunitWavelength returns a channel's emission wavelength in nanometres.
	SubunitWavelength(index int) (int, error)

	// SensorTemperature reads the sensor temperature in Celsius.
	SensorTemperature() (float64, error)
}

// New selects the backend: the in-memory simulator when simulation is
// requested, otherwise the native DCAM binding.
func New(simulation bool) (Interface, error) {
	if simulation {
		return NewSimulator(), nil
	}

	return newDCAM()
}
