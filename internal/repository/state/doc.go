// Package state implements persistence for instrument snapshots.
//
// The FileRepository stores and loads the last captured Snapshot as JSON
// on disk and exposes a Repository interface that the monitor service
// depends on.
package state
