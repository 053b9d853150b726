package safety

import (
	"time"

	"github.com/photonlab/maico/internal/domain/device"
)

const (
	// MaxExposureMs is the hard exposure ceiling in milliseconds; the
	// scan head is not rated for longer continuous illumination.
	MaxExposureMs = 10000.0

	// MinToggleInterval is the minimum time between two laser on/off
	// toggles. Faster cycling thermally stresses the emitters.
	MinToggleInterval = 500 * time.Millisecond
)

// Guards performs hardware safety checks. The toggle debounce keeps a
// single last-toggle timestamp; everything else is a pure function of
// its inputs and the configured ceilings.
type Guards struct {
	// maxPowerPercent is the configured power ceiling.
	maxPowerPercent int
	// lastToggle is the time of the last accepted laser toggle, zero when
	// none has happened yet.
	lastToggle time.Time
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// New creates guards enforcing the provided power ceiling in percent.
func New(maxPowerPercent int) *Guards {
	return &Guards{
		maxPowerPercent: maxPowerPercent,
		now:             time.Now,
	}
}

// CheckPowerLimit validates a requested power percentage: negative
// values are invalid parameters, values above the configured maximum are
// safety violations.
func (g *Guards) CheckPowerLimit(powerPercent int) error {
	if powerPercent < 0 {
		return device.NewInvalidParameter("power percentage cannot be negative", float64(powerPercent))
	}

	if powerPercent > g.maxPowerPercent {
		return device.NewLimitViolation(
			"power exceeds configured maximum",
			float64(powerPercent),
			float64(g.maxPowerPercent),
		)
	}

	return nil
}

// CheckExposureTime validates an exposure duration in milliseconds:
// non-positive values are invalid parameters, values above MaxExposureMs
// are safety violations.
func (g *Guards) CheckExposureTime(exposureMs float64) error {
	if exposureMs <= 0 {
		return device.NewInvalidParameter("exposure time must be positive", exposureMs)
	}

	if exposureMs > MaxExposureMs {
		return device.NewLimitViolation("exposure time exceeds safety limit", exposureMs, MaxExposureMs)
	}

	return nil
}

// CheckRapidToggle is an FSM guard that throttles the LaserOff/LaserOn
// pair in either direction. A toggle attempted within MinToggleInterval
// of the last accepted one is rejected without touching the timestamp;
// an accepted toggle records the current time. Other transitions pass
// untouched.
func (g *Guards) CheckRapidToggle(from, to device.State) error {
	if !isToggle(from, to) {
		return nil
	}

	now := g.now()

	if !g.lastToggle.IsZero() {
		if elapsed := now.Sub(g.lastToggle); elapsed < MinToggleInterval {
			return device.NewToggleViolation(MinToggleInterval-elapsed, MinToggleInterval)
		}
	}

	g.lastToggle = now

	return nil
}

// ResetToggleTimer clears the stored toggle timestamp. Administrative
// and test use only.
func (g *Guards) ResetToggleTimer() {
	g.lastToggle = time.Time{}
}

// isToggle reports whether the edge is a laser toggle in either direction.
func isToggle(from, to device.State) bool {
	return (from == device.StateLaserOff && to == device.StateLaserOn) ||
		(from == device.StateLaserOn && to == device.StateLaserOff)
}
