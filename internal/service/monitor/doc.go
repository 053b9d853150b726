// Package monitor implements the maicod daemon.
//
// The daemon owns one controller for the lifetime of the process. It
// polls the instrument status on a fixed interval, persists every
// snapshot through the state repository, and reconstructs the
// controller when the settings file changes or when the state machine
// lands in its terminal error state. Reconstruction is the only
// recovery path out of that state.
package monitor
