package device

import "time"

// Operator identifies the person or host driving the instrument.
type Operator struct {
	// Hostname is the machine name the command originated from.
	Hostname string
	// Username is the OS account name.
	Username string
}

// Snapshot couples a status with the operator and the capture time. The
// monitor persists one snapshot per poll so the last known instrument
// state survives restarts.
type Snapshot struct {
	// Timestamp is when the status was captured.
	Timestamp time.Time
	// Operator is who drove the instrument last, nil when unknown.
	Operator *Operator
	// Status is the captured controller status.
	Status *Status
}
