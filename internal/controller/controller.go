package controller

import (
	"context"
	"fmt"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/fsm"
	"github.com/photonlab/maico/internal/hardware"
	"github.com/photonlab/maico/internal/logger"
	"github.com/photonlab/maico/internal/safety"
)

// command enumerates the hardware sequences the controller can run.
// A closed set matched exhaustively; there is no unknown-command path.
type command int

const (
	// commandInitialize runs the activation sequence up to LaserOff.
	commandInitialize command = iota
	// commandLaserOn arms the active channel and starts capture.
	commandLaserOn
	// commandLaserOff stops capture and disarms the active channel.
	commandLaserOff
	// commandShutdown releases the device and the library.
	commandShutdown
)

// Controller owns the state machine, the safety guards and the hardware
// handle for one instrument. Construct with New, drive through the
// exported operations, and construct a fresh instance to recover after
// the state machine lands in its terminal error state.
type Controller struct {
	// cfg is the immutable instrument configuration.
	cfg *config.Config
	// machine is the lifecycle state machine.
	machine *fsm.Machine
	// guards performs the safety checks.
	guards *safety.Guards
	// hw is the hardware backend, simulated or native.
	hw hardware.Interface

	// isLaserOn is the aggregate "any channel on" flag.
	isLaserOn bool
	// currentPower is the active channel's power in percent; applied on
	// the next LaserOn when the laser is currently off.
	currentPower int
	// activeChannel is the channel targeted by single-channel operations.
	activeChannel int
	// lastError holds the text of the most recent failure for status queries.
	lastError string
}

// New creates a controller for the configured backend. The rapid-toggle
// guard is registered into the state machine's chain at construction.
func New(cfg *config.Config) (*Controller, error) {
	hw, err := hardware.New(cfg.Simulation)
	if err != nil {
		return nil, fmt.Errorf("select hardware backend: %w", err)
	}

	return NewWithHardware(cfg, hw), nil
}

// NewWithHardware creates a controller on an explicit hardware backend.
// Used by New and by tests injecting a prepared simulator.
func NewWithHardware(cfg *config.Config, hw hardware.Interface) *Controller {
	c := &Controller{
		cfg:     cfg,
		machine: fsm.New(),
		guards:  safety.New(cfg.MaxPowerPercent),
		hw:      hw,
	}

	c.machine.AddGuard(c.guards.CheckRapidToggle)

	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() device.State {
	return c.machine.Current()
}

// Initialize runs the hardware-mandated activation sequence. Legal only
// from Uninitialized; ends in LaserOff. Any step failure forces the
// state machine into its terminal error state, since the device may be
// physically half-configured.
func (c *Controller) Initialize(ctx context.Context) error {
	if s := c.machine.Current(); s != device.StateUninitialized {
		return c.fail(device.NewWrongState("initialize", s))
	}

	if err := c.run(ctx, commandInitialize); err != nil {
		c.machine.ForceError()

		return c.fail(err)
	}

	logger.InfoKV(ctx, "Instrument initialized",
		"device_index", c.cfg.DeviceIndex, "simulation", c.cfg.Simulation)

	return nil
}

// LaserOn arms the given channel at the given power and starts capture.
// Legal only from LaserOff.
func (c *Controller) LaserOn(ctx context.Context, channel, powerPercent int) error {
	if s := c.machine.Current(); s != device.StateLaserOff {
		return c.fail(device.NewWrongState("laser on", s))
	}

	if err := c.guards.CheckPowerLimit(powerPercent); err != nil {
		return c.fail(err)
	}

	c.activeChannel = channel
	c.currentPower = powerPercent

	if err := c.run(ctx, commandLaserOn); err != nil {
		return c.fail(err)
	}

	// A completed toggle clears the cooldown; it only stays armed after a
	// toggle that failed partway.
	c.guards.ResetToggleTimer()

	logger.InfoKV(ctx, "Laser on", "channel", channel, "power_percent", powerPercent)

	return nil
}

// LaserOff stops capture and disarms the active channel. Legal only from LaserOn.
func (c *Controller) LaserOff(ctx context.Context) error {
	if s := c.machine.Current(); s != device.StateLaserOn {
		return c.fail(device.NewWrongState("laser off", s))
	}

	if err := c.run(ctx, commandLaserOff); err != nil {
		return c.fail(err)
	}

	c.guards.ResetToggleTimer()

	logger.InfoKV(ctx, "Laser off", "channel", c.activeChannel)

	return nil
}

// SetPower validates and stores the active channel's power. When the
// laser is on the value is pushed to hardware immediately; when off it
// is applied by the next LaserOn.
func (c *Controller) SetPower(ctx context.Context, powerPercent int) error {
	if err := c.guards.CheckPowerLimit(powerPercent); err != nil {
		return c.fail(err)
	}

	if c.isLaserOn {
		if err := c.hw.SetSubunitPower(c.activeChannel, powerPercent); err != nil {
			return c.fail(err)
		}
	}

	c.currentPower = powerPercent

	logger.InfoKV(ctx, "Power updated", "channel", c.activeChannel, "power_percent", powerPercent)

	return nil
}

// SetPMTGain sets a channel's photomultiplier gain.
func (c *Controller) SetPMTGain(ctx context.Context, channel int, gain float64) error {
	control, err := c.hw.SubunitControl(channel)
	if err != nil {
		return c.fail(err)
	}

	if control == hardware.ControlNotInstalled {
		return c.fail(device.NewSubunitNotInstalled(channel))
	}

	if err := c.hw.SetSubunitPMTGain(channel, gain); err != nil {
		return c.fail(err)
	}

	logger.InfoKV(ctx, "PMT gain updated", "channel", channel, "gain", gain)

	return nil
}

// FireTrigger fires a software trigger into the running capture.
func (c *Controller) FireTrigger(ctx context.Context) error {
	if !c.hw.IsCaptureRunning() {
		return c.fail(&device.Error{
			Kind:    device.KindTriggerFireFailed,
			Message: "capture is not running",
		})
	}

	if err := c.hw.FireTrigger(); err != nil {
		return c.fail(err)
	}

	logger.Debug(ctx, "Software trigger fired")

	return nil
}

// Shutdown turns the laser off when needed, then walks the machine to
// Shutdown and releases the device and the library.
func (c *Controller) Shutdown(ctx context.Context) error {
	if c.isLaserOn {
		if err := c.LaserOff(ctx); err != nil {
			return err
		}
	}

	if err := c.run(ctx, commandShutdown); err != nil {
		return c.fail(err)
	}

	logger.Info(ctx, "Instrument shut down")

	return nil
}

// Status builds a read-only snapshot of the whole controller. It never
// fails: a channel whose control register cannot be read is omitted, and
// an unreadable temperature falls back to the default.
func (c *Controller) Status(ctx context.Context) *device.Status {
	temperature, err := c.hw.SensorTemperature()
	if err != nil {
		temperature = 25.0
	}

	status := &device.Status{
		State:               c.machine.Current(),
		IsLaserOn:           c.isLaserOn,
		IsCaptureRunning:    c.hw.IsCaptureRunning(),
		CurrentPowerPercent: c.currentPower,
		TemperatureCelsius:  temperature,
		Channels:            c.channelStatuses(),
		Simulation:          c.cfg.Simulation,
		LastError:           c.lastError,
	}

	logger.DebugKV(ctx, "Status assembled",
		"state", status.State.String(), "is_laser_on", status.IsLaserOn)

	return status
}

// run dispatches a command to its hardware sequence. The switch is
// exhaustive over the closed command set.
func (c *Controller) run(ctx context.Context, cmd command) error {
	switch cmd {
	case commandInitialize:
		return c.executeInitialize(ctx)
	case commandLaserOn:
		return c.executeLaserOn(ctx)
	case commandLaserOff:
		return c.executeLaserOff(ctx)
	case commandShutdown:
		return c.executeShutdown(ctx)
	}

	// Unreachable: command is a closed set.
	return device.NewInvalidParameter("unknown command", float64(cmd))
}

// executeInitialize performs library init, device open, hardware
// configuration and buffer allocation, interleaved with the FSM edges
// Uninitialized -> Initialized -> Ready -> LaserOff.
func (c *Controller) executeInitialize(ctx context.Context) error {
	deviceCount, err := c.hw.InitLibrary()
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Hardware library initialized", "device_count", deviceCount)

	if _, err := c.machine.Transition(device.StateInitialized); err != nil {
		return err
	}

	if err := c.hw.OpenDevice(c.cfg.DeviceIndex); err != nil {
		return err
	}

	if _, err := c.machine.Transition(device.StateReady); err != nil {
		return err
	}

	if err := c.configureHardware(); err != nil {
		return err
	}

	if _, err := c.machine.Transition(device.StateLaserOff); err != nil {
		return err
	}

	return nil
}

// configureHardware pushes trigger and exposure settings and allocates
// the acquisition buffer. The exposure value passes the safety guard
// before it reaches the device.
func (c *Controller) configureHardware() error {
	if err := c.hw.SetProperty(
		hardware.PropTriggerSource, float64(c.cfg.TriggerSourceValue()),
	); err != nil {
		return err
	}

	if err := c.hw.SetProperty(
		hardware.PropOutputTriggerKind, float64(c.cfg.OutputTriggerValue()),
	); err != nil {
		return err
	}

	if err := c.guards.CheckExposureTime(c.cfg.ExposureTimeMs); err != nil {
		return err
	}

	// The device expects seconds.
	if err := c.hw.SetProperty(
		hardware.PropExposureTime, c.cfg.ExposureTimeMs/1000.0,
	); err != nil {
		return err
	}

	return c.hw.AllocBuffer(c.cfg.BufferFrameCount)
}

// executeLaserOn arms the active channel: power before control, control
// before the state edge, capture last. A capture-start failure leaves
// the register armed with no acquisition running, so the machine is
// forced into the error state.
func (c *Controller) executeLaserOn(_ context.Context) error {
	if c.hw.IsCaptureRunning() {
		if err := c.hw.StopCapture(); err != nil {
			return err
		}
	}

	control, err := c.hw.SubunitControl(c.activeChannel)
	if err != nil {
		return err
	}

	if control == hardware.ControlNotInstalled {
		return device.NewSubunitNotInstalled(c.activeChannel)
	}

	// Power must be settled before the control register flips on.
	if err := c.hw.SetSubunitPower(c.activeChannel, c.currentPower); err != nil {
		return err
	}

	if err := c.hw.SetSubunitControl(c.activeChannel, hardware.ControlOn); err != nil {
		return err
	}

	if _, err := c.machine.Transition(device.StateLaserOn); err != nil {
		return err
	}

	if err := c.hw.StartCapture(); err != nil {
		c.machine.ForceError()

		return err
	}

	c.isLaserOn = true

	return nil
}

// executeLaserOff stops capture, disarms the channel and commits the
// LaserOn -> LaserOff edge.
func (c *Controller) executeLaserOff(_ context.Context) error {
	if err := c.hw.StopCapture(); err != nil {
		return err
	}

	if err := c.hw.SetSubunitControl(c.activeChannel, hardware.ControlOff); err != nil {
		return err
	}

	if _, err := c.machine.Transition(device.StateLaserOff); err != nil {
		return err
	}

	c.isLaserOn = false

	return nil
}

// executeShutdown walks LaserOff -> Ready when needed, commits the
// Shutdown edge and releases buffer, device and library in that order.
func (c *Controller) executeShutdown(_ context.Context) error {
	if c.machine.Current() == device.StateLaserOff {
		if _, err := c.machine.Transition(device.StateReady); err != nil {
			return err
		}
	}

	if _, err := c.machine.Transition(device.StateShutdown); err != nil {
		return err
	}

	if err := c.hw.ReleaseBuffer(); err != nil {
		return err
	}

	if err := c.hw.CloseDevice(); err != nil {
		return err
	}

	return c.hw.UninitLibrary()
}

// channelStatuses queries every channel slot, omitting slots whose
// control register cannot be read and defaulting the remaining fields.
func (c *Controller) channelStatuses() []device.ChannelStatus {
	count, err := c.hw.SubunitCount()
	if err != nil {
		return nil
	}

	statuses := make([]device.ChannelStatus, 0, count)

	for i := 0; i < count; i++ {
		control, err := c.hw.SubunitControl(i)
		if err != nil {
			continue
		}

		wavelength, err := c.hw.SubunitWavelength(i)
		if err != nil {
			wavelength = 0
		}

		power, err := c.hw.SubunitPower(i)
		if err != nil {
			power = 0
		}

		gain, err := c.hw.SubunitPMTGain(i)
		if err != nil {
			gain = 0.7
		}

		statuses = append(statuses, device.ChannelStatus{
			Index:        i,
			WavelengthNM: wavelength,
			IsOn:         control == hardware.ControlOn,
			PowerPercent: power,
			PMTGain:      gain,
			IsInstalled:  control != hardware.ControlNotInstalled,
		})
	}

	return statuses
}

// fail records the error text for status queries and returns the error.
func (c *Controller) fail(err error) error {
	c.lastError = err.Error()

	return err
}
