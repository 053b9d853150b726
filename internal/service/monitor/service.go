package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/controller"
	"github.com/photonlab/maico/internal/domain/device"
	"github.com/photonlab/maico/internal/logger"
	repo "github.com/photonlab/maico/internal/repository/state"
)

// service couples the controller with snapshot persistence and owns the
// reconstruction logic. It runs on a single goroutine; the command loop
// serializes every call.
type service struct {
	// configPath is the settings file, re-read on every reconstruction.
	configPath string
	// simulation forces the simulated backend regardless of configuration.
	simulation bool
	// repo persists status snapshots.
	repo repo.Repository
	// operator identifies this daemon in persisted snapshots.
	operator *device.Operator
	// ctrl is the current controller instance, replaced on reconstruction.
	ctrl *controller.Controller
	// cfg is the configuration the current controller was built from.
	cfg *config.Config
}

// newService loads the configuration, reports the last persisted
// snapshot if any, and brings up the first controller.
func newService(
	ctx context.Context,
	configPath string,
	simulation bool,
	repository repo.Repository,
	operator *device.Operator,
) (*service, error) {
	s := &service{
		configPath: configPath,
		simulation: simulation,
		repo:       repository,
		operator:   operator,
	}

	previous, err := repository.Load(ctx)
	switch {
	case err == nil:
		logger.InfoKV(ctx, "Last known state loaded",
			"state", previous.Status.State.String(),
			"captured_at", previous.Timestamp.Format(time.RFC3339))
	case errors.Is(err, repo.ErrNotFound):
		logger.Info(ctx, "No previous state snapshot found")
	default:
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}

	if err := s.bringUp(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// poll captures and persists one status snapshot. A controller stuck in
// the terminal error state is reconstructed after the snapshot is
// saved, so the error status is on disk before recovery wipes it.
func (s *service) poll(ctx context.Context) error {
	status := s.ctrl.Status(ctx)

	snapshot := &device.Snapshot{
		Timestamp: time.Now(),
		Operator:  s.operator,
		Status:    status,
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	if status.State == device.StateError {
		logger.ErrorKV(ctx, "Controller in error state, reconstructing", "last_error", status.LastError)

		return s.reconstruct(ctx)
	}

	return nil
}

// reconstruct tears down the current controller and builds a fresh one
// from a re-read configuration. The teardown is best-effort: a
// controller in the error state cannot run its shutdown sequence.
func (s *service) reconstruct(ctx context.Context) error {
	if s.ctrl.State() != device.StateError {
		if err := s.ctrl.Shutdown(ctx); err != nil {
			logger.WarnKV(ctx, "Shutdown before reconstruction failed", "error", err)
		}
	}

	return s.bringUp(ctx)
}

// bringUp loads the configuration and walks a new controller to LaserOff.
func (s *service) bringUp(ctx context.Context) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if s.simulation {
		cfg.Simulation = true
	}

	ctrl, err := controller.New(cfg)
	if err != nil {
		return err
	}

	if err := ctrl.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize instrument: %w", err)
	}

	s.ctrl = ctrl
	s.cfg = cfg

	logger.InfoKV(ctx, "Controller up",
		"device_index", cfg.DeviceIndex, "simulation", cfg.Simulation)

	return nil
}

// pollInterval derives the poll period from the configured safety
// timeout, which is the instrument's watchdog granularity.
func (s *service) pollInterval() time.Duration {
	return time.Duration(s.cfg.SafetyTimeoutMs) * time.Millisecond
}

// shutdown makes the instrument safe before the daemon exits.
func (s *service) shutdown(ctx context.Context) {
	if s.ctrl.State() == device.StateError {
		logger.Warn(ctx, "Controller in error state, skipping shutdown sequence")

		return
	}

	if err := s.ctrl.Shutdown(ctx); err != nil {
		logger.ErrorKV(ctx, "Shutdown failed", "error", err)
	}
}
