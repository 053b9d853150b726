// Package device contains core domain types for the laser controller:
// the lifecycle State, trigger enums, snapshot types (ChannelStatus,
// DeviceStatus, ScanConfig) with Clone helpers to avoid leaking internal
// references, and the typed Error used by every fallible operation.
package device
