package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/service/ctl"
	"github.com/photonlab/maico/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// simulation forces the simulated backend.
	simulation bool

	// laserChannel selects the channel for emission commands.
	laserChannel int
	// laserPower sets the emission power in percent.
	laserPower int
	// holdDuration limits how long emission commands keep the laser on.
	holdDuration time.Duration
	// channelPower sets the power when enabling a channel.
	channelPower int
	// channelOff disables the channel instead of enabling it.
	channelOff bool

	// rootCmd represents the base command for operating the instrument.
	rootCmd = &cobra.Command{
		Use:   "maicoctl",
		Short: "Operate the MAICO laser-scanning head.",
		Long: `One-shot operator CLI for the MAICO multi-channel laser-scanning head.

Every subcommand opens a complete device session: it acquires exclusive
access, runs the activation sequence, performs the operation, and walks
the instrument back to a safe state before exiting. Commands that keep
the laser emitting hold the session open for the requested duration or
until interrupted with Ctrl-C.`,
	}
)

// sessionContext sets up graceful interruption for a device session.
func sessionContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// sessionOptions collects the persistent flags into service options.
func sessionOptions() *ctl.Options {
	return &ctl.Options{
		ConfigPath: cfgPath,
		Simulation: simulation,
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the instrument status.",
	Long: `Opens a device session and prints the lifecycle state, capture state,
per-channel registers and sensor temperature.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunStatus(ctx, sessionOptions())
	},
}

var laserOnCmd = &cobra.Command{
	Use:   "laser-on",
	Short: "Turn the laser on and hold emission.",
	Long: `Turns the selected channel on at the given power and starts acquisition.

Emission is held for --duration, or until the process is interrupted when
no duration is given. The laser is turned off and the device released
before the command exits.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunLaserOn(ctx, sessionOptions(), laserChannel, laserPower, holdDuration)
	},
}

var laserOffCmd = &cobra.Command{
	Use:   "laser-off",
	Short: "Walk the instrument to a safe state.",
	Long: `Opens a device session and confirms every channel is off and acquisition
is stopped. Use after an aborted session left the head in an unknown state.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunLaserOff(ctx, sessionOptions())
	},
}

var setPowerCmd = &cobra.Command{
	Use:   "set-power [channel] [percent]",
	Short: "Write one channel's power register.",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		channel, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		power, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunSetPower(ctx, sessionOptions(), channel, power)
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel [index]",
	Short: "Enable or disable a single channel.",
	Long: `Enables the channel at the given power, or disables it with --off.

An enabled channel keeps emitting for --duration, or until the process is
interrupted. Acquisition follows the aggregate of all channels.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		channel, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunChannel(ctx, sessionOptions(), channel, !channelOff, channelPower, holdDuration)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Exercise the full lifecycle on one channel.",
	Long: `Runs the complete lifecycle: activation, laser on, a power change, laser
off, shutdown. Intended for bring-up checks, typically with --simulation.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := sessionContext()
		defer stop()

		return ctl.RunDemo(ctx, sessionOptions(), laserChannel, laserPower)
	},
}

// Execute runs the maicoctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		BoolVar(&simulation, "simulation", false, "force the simulated backend")

	laserOnCmd.Flags().IntVarP(&laserChannel, "channel", "n", 0, "channel index")
	laserOnCmd.Flags().
		IntVarP(&laserPower, "power", "p", config.DefaultChannelPowerPercent, "emission power in percent")
	laserOnCmd.Flags().DurationVarP(&holdDuration, "duration", "d", 0, "how long to hold emission (0 = until interrupted)")

	channelCmd.Flags().BoolVar(&channelOff, "off", false, "disable the channel instead of enabling it")
	channelCmd.Flags().
		IntVarP(&channelPower, "power", "p", config.DefaultChannelPowerPercent, "emission power in percent")
	channelCmd.Flags().DurationVarP(&holdDuration, "duration", "d", 0, "how long to hold emission (0 = until interrupted)")

	demoCmd.Flags().IntVarP(&laserChannel, "channel", "n", 0, "channel index")
	demoCmd.Flags().
		IntVarP(&laserPower, "power", "p", config.DefaultChannelPowerPercent, "emission power in percent")

	rootCmd.AddCommand(statusCmd, laserOnCmd, laserOffCmd, setPowerCmd, channelCmd, demoCmd)
}
