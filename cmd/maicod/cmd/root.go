package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/service/monitor"
	"github.com/photonlab/maico/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where status snapshots are persisted.
	stateFile string
	// pollInterval overrides the poll period derived from the configuration.
	pollInterval time.Duration
	// simulation forces the simulated backend.
	simulation bool

	// rootCmd represents the base command for running the monitor daemon.
	rootCmd = &cobra.Command{
		Use:   "maicod",
		Short: "Run the MAICO instrument monitor daemon.",
		Long: `Starts the monitor daemon that owns the instrument for the lifetime of
the process.

The daemon polls the instrument status on a fixed interval and persists
every snapshot to a JSON file for recovery across restarts. It watches
the settings file and reconstructs the controller when the file changes
or when the instrument lands in its terminal error state.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &monitor.Options{
				ConfigPath:   configPath,
				StateFile:    stateFile,
				PollInterval: pollInterval,
				Simulation:   simulation,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the maicod CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", config.DefaultStateFilename, "path to persist status snapshots")
	rootCmd.Flags().
		DurationVarP(&pollInterval, "poll-interval", "i", 0, "status poll interval (default derived from safety timeout)")
	rootCmd.Flags().BoolVar(&simulation, "simulation", false, "force the simulated backend")
}
