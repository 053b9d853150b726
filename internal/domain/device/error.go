package device

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies controller errors into a closed set of categories.
type Kind int

const (
	// KindUnknown is the zero value and never produced by the controller.
	KindUnknown Kind = iota
	// KindInvalidParameter means a caller value is outside its domain.
	KindInvalidParameter
	// KindInvalidStateTransition means an illegal FSM edge or an operation
	// attempted from the wrong lifecycle state.
	KindInvalidStateTransition
	// KindSafetyGuardViolation means a safety limit rejected the request:
	// power ceiling, exposure ceiling, or toggle-rate cooldown.
	KindSafetyGuardViolation
	// KindSubunitNotInstalled means the operation targets an absent channel.
	KindSubunitNotInstalled
	// KindLibraryInitFailed means the hardware library failed to initialize.
	KindLibraryInitFailed
	// KindDeviceOpenFailed means the device could not be opened.
	KindDeviceOpenFailed
	// KindDeviceNotOpen means a device operation ran before open.
	KindDeviceNotOpen
	// KindPropertyGetFailed means a device property read failed.
	KindPropertyGetFailed
	// KindPropertySetFailed means a device property write failed.
	KindPropertySetFailed
	// KindTriggerFireFailed means the software trigger could not be fired.
	KindTriggerFireFailed
	// KindBufferAllocFailed means the capture buffer could not be allocated.
	KindBufferAllocFailed
	// KindBufferReleaseFailed means the capture buffer could not be released.
	KindBufferReleaseFailed
	// KindCaptureStartFailed means continuous capture could not be started.
	KindCaptureStartFailed
	// KindCaptureStopFailed means continuous capture could not be stopped.
	KindCaptureStopFailed
)

// String returns the constant-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "INVALID_PARAMETER"
	case KindInvalidStateTransition:
		return "INVALID_STATE_TRANSITION"
	case KindSafetyGuardViolation:
		return "SAFETY_GUARD_VIOLATION"
	case KindSubunitNotInstalled:
		return "SUBUNIT_NOT_INSTALLED"
	case KindLibraryInitFailed:
		return "LIBRARY_INIT_FAILED"
	case KindDeviceOpenFailed:
		return "DEVICE_OPEN_FAILED"
	case KindDeviceNotOpen:
		return "DEVICE_NOT_OPEN"
	case KindPropertyGetFailed:
		return "PROPERTY_GET_FAILED"
	case KindPropertySetFailed:
		return "PROPERTY_SET_FAILED"
	case KindTriggerFireFailed:
		return "TRIGGER_FIRE_FAILED"
	case KindBufferAllocFailed:
		return "BUFFER_ALLOC_FAILED"
	case KindBufferReleaseFailed:
		return "BUFFER_RELEASE_FAILED"
	case KindCaptureStartFailed:
		return "CAPTURE_START_FAILED"
	case KindCaptureStopFailed:
		return "CAPTURE_STOP_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error is the typed error returned by every fallible controller
// operation. Context fields are populated per Kind; unset fields keep
// their zero value and are omitted from the rendered message.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Message is the human-readable description.
	Message string

	// From and To carry the rejected edge for invalid transitions.
	From State
	To   State
	// HasTransition marks From/To as meaningful (both may be zero-valued states).
	HasTransition bool

	// Requested and Limit carry the offending value and its ceiling for
	// parameter and safety violations. Limit stays zero when no ceiling applies.
	Requested float64
	Limit     float64
	HasValues bool

	// CooldownRemaining and MinInterval describe a toggle-rate rejection.
	CooldownRemaining time.Duration
	MinInterval       time.Duration

	// Channel is the targeted channel index for channel-scoped failures.
	Channel    int
	HasChannel bool

	// HardwareCode is the underlying status code for hardware-layer failures.
	HardwareCode    int
	HasHardwareCode bool
}

// Error renders the message with the kind tag and any populated context.
func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)

	var parts []string

	if e.HasTransition {
		parts = append(parts, fmt.Sprintf("from=%s, to=%s", e.From, e.To))
	}

	if e.HasValues {
		parts = append(parts, fmt.Sprintf("requested=%g", e.Requested))
		if e.Limit != 0 {
			parts = append(parts, fmt.Sprintf("max_allowed=%g", e.Limit))
		}
	}

	if e.CooldownRemaining > 0 {
		parts = append(parts,
			fmt.Sprintf("cooldown_remaining=%s, min_interval=%s", e.CooldownRemaining, e.MinInterval))
	}

	if e.HasChannel {
		parts = append(parts, fmt.Sprintf("channel=%d", e.Channel))
	}

	if e.HasHardwareCode {
		parts = append(parts, fmt.Sprintf("hardware_code=%d", e.HardwareCode))
	}

	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}

	return b.String()
}

// KindOf extracts the Kind from an error chain. It returns KindUnknown
// when the chain contains no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// NewInvalidParameter reports a caller value outside its domain.
func NewInvalidParameter(message string, requested float64) *Error {
	return &Error{
		Kind:      KindInvalidParameter,
		Message:   message,
		Requested: requested,
		HasValues: true,
	}
}

// NewInvalidTransition reports an illegal FSM edge.
func NewInvalidTransition(from, to State) *Error {
	return &Error{
		Kind:          KindInvalidStateTransition,
		Message:       fmt.Sprintf("cannot transition from %s to %s", from, to),
		From:          from,
		To:            to,
		HasTransition: true,
	}
}

// NewWrongState reports an operation attempted from the wrong lifecycle state.
func NewWrongState(operation string, current State) *Error {
	return &Error{
		Kind:          KindInvalidStateTransition,
		Message:       fmt.Sprintf("%s is not allowed in state %s", operation, current),
		From:          current,
		To:            current,
		HasTransition: true,
	}
}

// NewLimitViolation reports a value above a configured safety ceiling.
func NewLimitViolation(message string, requested, limit float64) *Error {
	return &Error{
		Kind:      KindSafetyGuardViolation,
		Message:   message,
		Requested: requested,
		Limit:     limit,
		HasValues: true,
	}
}

// NewToggleViolation reports a laser toggle attempted before the cooldown elapsed.
func NewToggleViolation(remaining, minInterval time.Duration) *Error {
	return &Error{
		Kind:              KindSafetyGuardViolation,
		Message:           "laser toggled too quickly",
		CooldownRemaining: remaining,
		MinInterval:       minInterval,
	}
}

// NewSubunitNotInstalled reports an operation against an absent channel.
func NewSubunitNotInstalled(channel int) *Error {
	return &Error{
		Kind:       KindSubunitNotInstalled,
		Message:    "subunit is not installed",
		Channel:    channel,
		HasChannel: true,
	}
}

// NewHardware reports a hardware-layer failure with its underlying status code.
func NewHardware(kind Kind, message string, code int) *Error {
	return &Error{
		Kind:            kind,
		Message:         message,
		HardwareCode:    code,
		HasHardwareCode: true,
	}
}
