// Package common holds helpers shared by several services.
//
// It provides operator detection (hostname/username) for the audit trail
// and a process-table scan that enforces exclusive device access across
// the instrument binaries.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
