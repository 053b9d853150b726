// Package controller orchestrates the laser-scanning instrument: it maps
// operator intents (initialize, laser on/off, power changes, shutdown)
// onto ordered hardware calls coordinated with the lifecycle state
// machine and the safety guards.
//
// The central hardware invariant driving every sequence: a channel
// physically emits light iff its control register is on AND the
// acquisition loop is running. Every operation therefore co-manages the
// control registers and the capture loop, never just one.
//
// A Controller is not safe for concurrent use; callers needing
// concurrency must serialize all operations on one instance.
package controller
