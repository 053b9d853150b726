// Package fsm implements the controller lifecycle state machine: an
// allow-listed transition table, an ordered chain of guards that can veto
// otherwise-legal transitions, and an unconditional escape into the
// terminal error state for hardware sequences that fail partway.
package fsm
