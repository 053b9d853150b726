package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/photonlab/maico/internal/config"
	"github.com/photonlab/maico/internal/domain/device"
)

// Repository defines persistence operations for instrument snapshots.
type Repository interface {
	Load(ctx context.Context) (*device.Snapshot, error)
	Save(ctx context.Context, snapshot *device.Snapshot) error
}

// FileRepository persists snapshots to a JSON file on disk. The on-disk
// schema is decoupled from the domain types through the file* structs so
// domain changes never silently change the file format.
type FileRepository struct {
	// path is the filesystem location of the JSON snapshot file.
	path string
	// mu protects concurrent access to the snapshot file.
	mu sync.Mutex
}

// ErrNotFound is returned when the snapshot file does not exist yet.
var ErrNotFound = errors.New("snapshot not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the last snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*device.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var stored fileSnapshot
	if err = json.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}

	return fromFile(&stored), nil
}

// Save writes the snapshot to disk.
func (r *FileRepository) Save(_ context.Context, snapshot *device.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(toFile(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

// fileSnapshot is the on-disk schema of a snapshot.
type fileSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Operator  *fileOperator `json:"operator,omitempty"`
	Status    *fileStatus   `json:"status,omitempty"`
}

type fileOperator struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

type fileStatus struct {
	State               int           `json:"state"`
	StateName           string        `json:"state_name"`
	IsLaserOn           bool          `json:"is_laser_on"`
	IsCaptureRunning    bool          `json:"is_capture_running"`
	CurrentPowerPercent int           `json:"current_power_percent"`
	TemperatureCelsius  float64       `json:"temperature_celsius"`
	Channels            []fileChannel `json:"channels"`
	Simulation          bool          `json:"simulation"`
	LastError           string        `json:"last_error,omitempty"`
}

type fileChannel struct {
	Index        int     `json:"index"`
	WavelengthNM int     `json:"wavelength_nm"`
	IsOn         bool    `json:"is_on"`
	PowerPercent int     `json:"power_percent"`
	PMTGain      float64 `json:"pmt_gain"`
	IsInstalled  bool    `json:"is_installed"`
}

// fromFile converts the on-disk schema into the domain Snapshot model.
// StateName is display-only; the numeric state is authoritative.
func fromFile(stored *fileSnapshot) *device.Snapshot {
	snapshot := &device.Snapshot{
		Timestamp: stored.Timestamp,
	}

	if stored.Operator != nil {
		snapshot.Operator = &device.Operator{
			Hostname: stored.Operator.Hostname,
			Username: stored.Operator.Username,
		}
	}

	if stored.Status != nil {
		status := &device.Status{
			State:               device.State(stored.Status.State),
			IsLaserOn:           stored.Status.IsLaserOn,
			IsCaptureRunning:    stored.Status.IsCaptureRunning,
			CurrentPowerPercent: stored.Status.CurrentPowerPercent,
			TemperatureCelsius:  stored.Status.TemperatureCelsius,
			Simulation:          stored.Status.Simulation,
			LastError:           stored.Status.LastError,
		}

		for _, ch := range stored.Status.Channels {
			status.Channels = append(status.Channels, device.ChannelStatus{
				Index:        ch.Index,
				WavelengthNM: ch.WavelengthNM,
				IsOn:         ch.IsOn,
				PowerPercent: ch.PowerPercent,
				PMTGain:      ch.PMTGain,
				IsInstalled:  ch.IsInstalled,
			})
		}

		snapshot.Status = status
	}

	return snapshot
}

// toFile converts the domain Snapshot model into the on-disk schema.
func toFile(snapshot *device.Snapshot) *fileSnapshot {
	stored := &fileSnapshot{
		Timestamp: snapshot.Timestamp,
	}

	if snapshot.Operator != nil {
		stored.Operator = &fileOperator{
			Hostname: snapshot.Operator.Hostname,
			Username: snapshot.Operator.Username,
		}
	}

	if snapshot.Status != nil {
		status := &fileStatus{
			State:               int(snapshot.Status.State),
			StateName:           snapshot.Status.State.String(),
			IsLaserOn:           snapshot.Status.IsLaserOn,
			IsCaptureRunning:    snapshot.Status.IsCaptureRunning,
			CurrentPowerPercent: snapshot.Status.CurrentPowerPercent,
			TemperatureCelsius:  snapshot.Status.TemperatureCelsius,
			Simulation:          snapshot.Status.Simulation,
			LastError:           snapshot.Status.LastError,
		}

		for _, ch := range snapshot.Status.Channels {
			status.Channels = append(status.Channels, fileChannel{
				Index:        ch.Index,
				WavelengthNM: ch.WavelengthNM,
				IsOn:         ch.IsOn,
				PowerPercent: ch.PowerPercent,
				PMTGain:      ch.PMTGain,
				IsInstalled:  ch.IsInstalled,
			})
		}

		stored.Status = status
	}

	return stored
}
