// Package safety validates power and exposure requests against
// configured ceilings and debounces rapid laser on/off toggling. The
// toggle check plugs into the FSM guard chain; the value checks are
// called directly by the controller before touching hardware.
package safety
