package hardware

import (
	"github.com/photonlab/maico/internal/domain/device"
)

// defaultTemperature is reported by a freshly constructed simulator.
const defaultTemperature = 25.0

// simSubunit models one simulated laser channel.
type simSubunit struct {
	// wavelengthNM is the fixed emission wavelength.
	wavelengthNM int
	// control is the current control register value.
	control SubunitControl
	// powerPercent is the current power register value.
	powerPercent int
	// pmtGain is the current detector gain.
	pmtGain float64
}

// Simulator is an in-memory implementation of the hardware contract: a
// property map, four laser channels, and a capture flag. It behaves
// identically to the native binding with respect to the property,
// channel and capture semantics the controller depends on, which makes
// every controller scenario deterministic and hardware-independent.
type Simulator struct {
	// initialized tracks library init state.
	initialized bool
	// open tracks whether the device is open.
	open bool
	// props stores numeric device properties by id.
	props map[PropertyID]float64
	// bufferFrames is the allocated buffer size, zero when none.
	bufferFrames int
	// capturing tracks the acquisition loop.
	capturing bool
	// triggersFired counts software triggers, for test assertions.
	triggersFired int
	// subunits are the simulated channels in index order.
	subunits []simSubunit

	// StartCaptureErr, when set, is returned by the next StartCapture
	// call. Test hook for the mid-sequence failure paths.
	StartCaptureErr error
	// StopCaptureErr, when set, is returned by the next StopCapture call.
	StopCaptureErr error
}

// NewSimulator creates a simulator with the standard four-line MAICO
// head (405/488/561/640 nm) and the default detector gain.
func NewSimulator() *Simulator {
	wavelengths := []int{405, 488, 561, 640}

	subunits := make([]simSubunit, 0, len(wavelengths))
	for _, wl := range wavelengths {
		subunits = append(subunits, simSubunit{
			wavelengthNM: wl,
			control:      ControlOff,
			pmtGain:      0.7,
		})
	}

	return &Simulator{
		props: map[PropertyID]float64{
			PropSensorTemperature: defaultTemperature,
		},
		subunits: subunits,
	}
}

// InitLibrary marks the library as initialized. Repeated calls are no-ops.
func (s *Simulator) InitLibrary() (int, error) {
	s.initialized = true

	return 1, nil
}

// UninitLibrary releases the simulated library.
func (s *Simulator) UninitLibrary() error {
	s.initialized = false
	s.open = false

	return nil
}

// OpenDevice opens the single simulated device at index 0.
func (s *Simulator) OpenDevice(index int) error {
	if !s.initialized {
		return device.NewHardware(device.KindDeviceOpenFailed, "library not initialized", CodeNotReady)
	}

	if index != 0 {
		return device.NewHardware(device.KindDeviceOpenFailed, "no device at index", CodeNoCamera)
	}

	s.open = true

	return nil
}

// CloseDevice closes the simulated device. Closing twice is a no-op.
func (s *Simulator) CloseDevice() error {
	s.open = false

	return nil
}

// GetProperty reads a property; unset properties read as zero.
func (s *Simulator) GetProperty(id PropertyID) (float64, error) {
	if !s.open {
		return 0, device.NewHardware(device.KindDeviceNotOpen, "device not opened", CodeNotReady)
	}

	return s.props[id], nil
}

// SetProperty writes a property.
func (s *Simulator) SetProperty(id PropertyID, value float64) error {
	if !s.open {
		return device.NewHardware(device.KindDeviceNotOpen, "device not opened", CodeNotReady)
	}

	s.props[id] = value

	return nil
}

// AllocBuffer allocates the simulated acquisition buffer.
func (s *Simulator) AllocBuffer(frameCount int) error {
	if !s.open {
		return device.NewHardware(device.KindDeviceNotOpen, "device not opened", CodeNotReady)
	}

	if frameCount <= 0 {
		return device.NewHardware(device.KindBufferAllocFailed, "frame count must be positive", CodeNoBuffer)
	}

	s.bufferFrames = frameCount

	return nil
}

// ReleaseBuffer releases the simulated acquisition buffer.
func (s *Simulator) ReleaseBuffer() error {
	s.bufferFrames = 0

	return nil
}

// StartCapture starts the simulated acquisition loop.
func (s *Simulator) StartCapture() error {
	if err := s.StartCaptureErr; err != nil {
		s.StartCaptureErr = nil

		return err
	}

	if !s.open {
		return device.NewHardware(device.KindCaptureStartFailed, "device not opened", CodeNotReady)
	}

	if s.bufferFrames == 0 {
		return device.NewHardware(device.KindCaptureStartFailed, "no capture buffer allocated", CodeNoBuffer)
	}

	s.capturing = true

	return nil
}

// StopCapture stops the simulated acquisition loop.
func (s *Simulator) StopCapture() error {
	if err := s.StopCaptureErr; err != nil {
		s.StopCaptureErr = nil

		return err
	}

	s.capturing = false

	return nil
}

// IsCaptureRunning reports the acquisition loop state.
func (s *Simulator) IsCaptureRunning() bool {
	return s.capturing
}

// FireTrigger records a software trigger.
func (s *Simulator) FireTrigger() error {
	if !s.open {
		return device.NewHardware(device.KindTriggerFireFailed, "device not opened", CodeNotReady)
	}

	s.triggersFired++

	return nil
}

// TriggersFired returns the number of software triggers fired so far.
func (s *Simulator) TriggersFired() int {
	return s.triggersFired
}

// SubunitCount returns the number of simulated channel slots.
func (s *Simulator) SubunitCount() (int, error) {
	return len(s.subunits), nil
}

// SubunitControl reads a channel control register; out-of-range indexes
// report ControlNotInstalled like an empty slot on real hardware.
func (s *Simulator) SubunitControl(index int) (SubunitControl, error) {
	if index < 0 || index >= len(s.subunits) {
		return ControlNotInstalled, nil
	}

	return s.subunits[index].control, nil
}

// SetSubunitControl writes a channel control register.
func (s *Simulator) SetSubunitControl(index int, control SubunitControl) error {
	if index < 0 || index >= len(s.subunits) {
		return device.NewHardware(device.KindPropertySetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	s.subunits[index].control = control

	return nil
}

// SubunitPower reads a channel power register.
func (s *Simulator) SubunitPower(index int) (int, error) {
	if index < 0 || index >= len(s.subunits) {
		return 0, device.NewHardware(device.KindPropertyGetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	return s.subunits[index].powerPercent, nil
}

// SetSubunitPower writes a channel power register.
func (s *Simulator) SetSubunitPower(index, powerPercent int) error {
	if index < 0 || index >= len(s.subunits) {
		return device.NewHardware(device.KindPropertySetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	s.subunits[index].powerPercent = powerPercent

	return nil
}

// SubunitPMTGain reads a channel detector gain.
func (s *Simulator) SubunitPMTGain(index int) (float64, error) {
	if index < 0 || index >= len(s.subunits) {
		return 0, device.NewHardware(device.KindPropertyGetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	return s.subunits[index].pmtGain, nil
}

// SetSubunitPMTGain writes a channel detector gain.
func (s *Simulator) SetSubunitPMTGain(index int, gain float64) error {
	if index < 0 || index >= len(s.subunits) {
		return device.NewHardware(device.KindPropertySetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	s.subunits[index].pmtGain = gain

	return nil
}

// SubunitWavelength returns a channel's fixed wavelength.
func (s *Simulator) SubunitWavelength(index int) (int, error) {
	if index < 0 || index >= len(s.subunits) {
		return 0, device.NewHardware(device.KindPropertyGetFailed, "subunit index out of range", CodeInvalidSubunit)
	}

	return s.subunits[index].wavelengthNM, nil
}

// SensorTemperature reads the simulated sensor temperature.
func (s *Simulator) SensorTemperature() (float64, error) {
	return s.GetProperty(PropSensorTemperature)
}
