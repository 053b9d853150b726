package ctl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/controller"
	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/logger"
	"github.com/photonlab/maico/internal/service/common"
)

// Options configures a maicoctl device session.
type Options struct {
	// ConfigPath to the YAML settings file, defaults to the standard filename if empty.
	ConfigPath string
	// Simulation forces the simulated backend regardless of configuration.
	Simulation bool
}

// RunStatus opens a session and prints the instrument status.
func RunStatus(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "maicoctl/status")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		fmt.Print(formatStatus(ctrl.Status(ctx)))

		return nil
	})
}

// RunLaserOn opens a session, turns the laser on at the given channel
// and power, and holds emission until the duration elapses or the
// process is interrupted. The deferred shutdown turns the laser off.
func RunLaserOn(ctx context.Context, opts *Options, channel, powerPercent int, duration time.Duration) error {
	ctx = logger.WithName(ctx, "maicoctl/laser-on")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		if err := ctrl.LaserOn(ctx, channel, powerPercent); err != nil {
			return err
		}

		fmt.Print(formatStatus(ctrl.Status(ctx)))

		return hold(ctx, duration)
	})
}

// RunLaserOff walks a possibly armed instrument back to a safe state.
// A fresh activation sequence already lands with every channel off, so
// the session itself is the operation.
func RunLaserOff(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "maicoctl/laser-off")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		logger.Info(ctx, "Instrument confirmed safe, all channels off")

		fmt.Print(formatStatus(ctrl.Status(ctx)))

		return nil
	})
}

// RunSetPower opens a session and writes one channel's power register.
func RunSetPower(ctx context.Context, opts *Options, channel, powerPercent int) error {
	ctx = logger.WithName(ctx, "maicoctl/set-power")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		if err := ctrl.SetChannelPower(ctx, channel, powerPercent); err != nil {
			return err
		}

		fmt.Print(formatStatus(ctrl.Status(ctx)))

		return nil
	})
}

// RunChannel opens a session and enables or disables one channel. An
// enabled channel keeps emitting until the duration elapses or the
// process is interrupted; the deferred shutdown disarms it.
func RunChannel(
	ctx context.Context,
	opts *Options,
	channel int,
	enabled bool,
	powerPercent int,
	duration time.Duration,
) error {
	ctx = logger.WithName(ctx, "maicoctl/channel")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		if err := ctrl.SetChannelEnabled(ctx, channel, enabled, powerPercent); err != nil {
			return err
		}

		fmt.Print(formatStatus(ctrl.Status(ctx)))

		if !enabled {
			return nil
		}

		return hold(ctx, duration)
	})
}

// demoHoldTime is how long the demo keeps the laser emitting.
const demoHoldTime = 2 * time.Second

// RunDemo exercises the full lifecycle on one channel: on, power change,
// off. Intended for bring-up checks, typically with --simulation.
func RunDemo(ctx context.Context, opts *Options, channel, powerPercent int) error {
	ctx = logger.WithName(ctx, "maicoctl/demo")

	return withSession(ctx, opts, func(ctx context.Context, ctrl *controller.Controller) error {
		if err := ctrl.LaserOn(ctx, channel, powerPercent); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Laser emitting", "channel", channel, "power_percent", powerPercent)

		if err := hold(ctx, demoHoldTime); err != nil {
			return err
		}

		if err := ctrl.SetPower(ctx, powerPercent/2); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Power halved", "power_percent", powerPercent/2)

		if err := hold(ctx, demoHoldTime); err != nil {
			return err
		}

		if err := ctrl.LaserOff(ctx); err != nil {
			return err
		}

		fmt.Print(formatStatus(ctrl.Status(ctx)))

		return nil
	})
}

// withSession brackets an operation with exclusive access, the
// activation sequence and the shutdown sequence. Shutdown runs even
// when the operation fails, unless the machine is already in its
// terminal error state, where hardware calls are no longer trusted.
func withSession(
	ctx context.Context,
	opts *Options,
	operation func(ctx context.Context, ctrl *controller.Controller) error,
) error {
	if err := common.EnsureSingleInstance(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.Simulation {
		cfg.Simulation = true
	}

	ctrl, err := controller.New(cfg)
	if err != nil {
		return err
	}

	if err := ctrl.Initialize(ctx); err != nil {
		return err
	}

	operationErr := operation(ctx, ctrl)

	if ctrl.State() != device.StateError {
		// Shutdown must use a live context: the hold phase usually ends
		// by the operator interrupting the process.
		if err := ctrl.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorKV(ctx, "Shutdown failed", "error", err)

			if operationErr == nil {
				return err
			}
		}
	}

	return operationErr
}

// hold blocks for the duration, or until interrupted when the duration
// is zero. Interruption during a timed hold is not an error: the
// session's deferred shutdown still makes the instrument safe.
func hold(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		logger.Info(ctx, "Holding until interrupted (Ctrl-C to stop)")

		<-ctx.Done()

		return nil
	}

	logger.InfoKV(ctx, "Holding", "duration", duration.String())

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	return nil
}

// formatStatus renders a status snapshot as an operator-readable report.
func formatStatus(status *device.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "State:        %s\n", status.State)
	fmt.Fprintf(&b, "Laser:        %s\n", onOff(status.IsLaserOn))
	fmt.Fprintf(&b, "Capture:      %s\n", runningStopped(status.IsCaptureRunning))
	fmt.Fprintf(&b, "Power:        %d%%\n", status.CurrentPowerPercent)
	fmt.Fprintf(&b, "Temperature:  %.1f C\n", status.TemperatureCelsius)
	fmt.Fprintf(&b, "Backend:      %s\n", backendName(status.Simulation))

	for _, ch := range status.Channels {
		if !ch.IsInstalled {
			fmt.Fprintf(&b, "Channel %d:    not installed\n", ch.Index)
			continue
		}

		fmt.Fprintf(&b, "Channel %d:    %d nm, %s, %d%%, gain %.2f\n",
			ch.Index, ch.WavelengthNM, onOff(ch.IsOn), ch.PowerPercent, ch.PMTGain)
	}

	if status.LastError != "" {
		fmt.Fprintf(&b, "Last error:   %s\n", status.LastError)
	}

	return b.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}

	return "off"
}

func runningStopped(running bool) string {
	if running {
		return "running"
	}

	return "stopped"
}

func backendName(simulation bool) string {
	if simulation {
		return "simulation"
	}

	return "hardware"
}
