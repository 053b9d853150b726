package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/logger"
	repo "github.com/photonlab/maico/internal/repository/state"
	"github.com/photonlab/maico/internal/service/common"
)

// Options controls the maicod process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile specifies the path to persist status snapshots.
	StateFile string
	// PollInterval overrides the poll period derived from the configuration.
	PollInterval time.Duration
	// Simulation forces the simulated backend regardless of configuration.
	Simulation bool
}

// Run starts the monitor daemon and blocks until the context is
// canceled. Exactly one instrument process may run at a time; the
// process table is checked before the device is touched.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "maicod")

	if err := common.EnsureSingleInstance(); err != nil {
		return err
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	stateFile := opts.StateFile
	if stateFile == "" {
		stateFile = config.DefaultStateFilename
	}

	operator, err := common.DetectOperator()
	if err != nil {
		return fmt.Errorf("detect operator: %w", err)
	}

	svc, err := newService(ctx, configPath, opts.Simulation, repo.NewFileRepository(stateFile), operator)
	if err != nil {
		return err
	}

	// The instrument is made safe on every exit path.
	defer svc.shutdown(context.WithoutCancel(ctx))

	watcher, err := watchConfig(configPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = watcher.Close()
	}()

	interval := opts.PollInterval
	if interval <= 0 {
		interval = svc.pollInterval()
	}

	logger.InfoKV(ctx, "Monitoring instrument",
		"config_path", configPath, "state_file", stateFile, "poll_interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil

		case <-ticker.C:
			if err := svc.poll(ctx); err != nil {
				logger.ErrorKV(ctx, "Poll failed", "error", err)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isConfigChange(event, configPath) {
				continue
			}

			logger.InfoKV(ctx, "Settings file changed, reconstructing controller", "event", event.Op.String())

			if err := svc.reconstruct(ctx); err != nil {
				logger.ErrorKV(ctx, "Reconstruction failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Settings watcher error", "error", err)
		}
	}
}

// watchConfig watches the settings file's directory. Watching the
// directory instead of the file survives the rename-and-replace write
// pattern most editors and config tools use.
func watchConfig(configPath string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watch settings directory: %w", err)
	}

	return watcher, nil
}

// isConfigChange reports whether the event is a content change of the
// settings file itself.
func isConfigChange(event fsnotify.Event, configPath string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(configPath) {
		return false
	}

	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)
}
