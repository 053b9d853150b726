package controller

import (
	"context"

	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/hardware"
	"github.com/photonlab/maico/internal/logger"
)

// SetChannelEnabled turns one channel on or off independently of the
// single-active-channel operations. Legal from LaserOff or LaserOn.
// Enabling writes the power register strictly before the control
// register flips on; power must never be applied while the control state
// is ambiguous. Capture and FSM state follow the aggregate flag, not the
// individual call.
func (c *Controller) SetChannelEnabled(ctx context.Context, channel int, enabled bool, powerPercent int) error {
	if s := c.machine.Current(); s != device.StateLaserOff && s != device.StateLaserOn {
		return c.fail(device.NewWrongState("set channel enabled", s))
	}

	control, err := c.hw.SubunitControl(channel)
	if err != nil {
		return c.fail(err)
	}

	if control == hardware.ControlNotInstalled {
		return c.fail(device.NewSubunitNotInstalled(channel))
	}

	if enabled {
		if err := c.guards.CheckPowerLimit(powerPercent); err != nil {
			return c.fail(err)
		}

		if err := c.hw.SetSubunitPower(channel, powerPercent); err != nil {
			return c.fail(err)
		}

		if err := c.hw.SetSubunitControl(channel, hardware.ControlOn); err != nil {
			return c.fail(err)
		}

		c.activeChannel = channel
		c.currentPower = powerPercent
	} else {
		if err := c.hw.SetSubunitControl(channel, hardware.ControlOff); err != nil {
			return c.fail(err)
		}
	}

	if err := c.syncAggregate(ctx); err != nil {
		return c.fail(err)
	}

	logger.InfoKV(ctx, "Channel updated",
		"channel", channel, "enabled", enabled, "power_percent", powerPercent)

	return nil
}

// SetChannelPower updates one channel's power register. Legal from
// LaserOff or LaserOn.
func (c *Controller) SetChannelPower(ctx context.Context, channel, powerPercent int) error {
	if s := c.machine.Current(); s != device.StateLaserOff && s != device.StateLaserOn {
		return c.fail(device.NewWrongState("set channel power", s))
	}

	if err := c.guards.CheckPowerLimit(powerPercent); err != nil {
		return c.fail(err)
	}

	control, err := c.hw.SubunitControl(channel)
	if err != nil {
		return c.fail(err)
	}

	if control == hardware.ControlNotInstalled {
		return c.fail(device.NewSubunitNotInstalled(channel))
	}

	if err := c.hw.SetSubunitPower(channel, powerPercent); err != nil {
		return c.fail(err)
	}

	if channel == c.activeChannel {
		c.currentPower = powerPercent
	}

	logger.InfoKV(ctx, "Channel power updated", "channel", channel, "power_percent", powerPercent)

	return nil
}

// syncAggregate recomputes the "any channel on" flag across all channels
// and drives capture and the state machine to match it: capture starts
// on the aggregate's 0 -> 1 edge, stops when it returns to zero, and the
// lifecycle state is resynchronized regardless of which API path changed
// the channels.
func (c *Controller) syncAggregate(ctx context.Context) error {
	anyOn, err := c.anyChannelOn()
	if err != nil {
		return err
	}

	switch {
	case anyOn && !c.isLaserOn:
		if _, err := c.machine.Transition(device.StateLaserOn); err != nil {
			return err
		}

		if err := c.hw.StartCapture(); err != nil {
			c.machine.ForceError()

			return err
		}

		c.isLaserOn = true
		c.guards.ResetToggleTimer()

		logger.Debug(ctx, "Aggregate on, capture started")

	case !anyOn && c.isLaserOn:
		if err := c.hw.StopCapture(); err != nil {
			return err
		}

		if _, err := c.machine.Transition(device.StateLaserOff); err != nil {
			return err
		}

		c.isLaserOn = false
		c.guards.ResetToggleTimer()

		logger.Debug(ctx, "Aggregate off, capture stopped")
	}

	return nil
}

// anyChannelOn scans every channel slot's control register.
func (c *Controller) anyChannelOn() (bool, error) {
	count, err := c.hw.SubunitCount()
	if err != nil {
		return false, err
	}

	for i := 0; i < count; i++ {
		control, err := c.hw.SubunitControl(i)
		if err != nil {
			return false, err
		}

		if control == hardware.ControlOn {
			return true, nil
		}
	}

	return false, nil
}
