// Package ctl implements the maicoctl subcommands.
//
// Every subcommand is a complete device session: it acquires exclusive
// access, runs the activation sequence, performs its operation, and
// walks the instrument back to a safe state before the process exits.
// Commands that keep the laser emitting hold the session open until the
// requested duration elapses or the process is interrupted.
package ctl
