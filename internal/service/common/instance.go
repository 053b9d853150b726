//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// Executable names that hold the hardware handle. Only one of them may
// run at a time; the native library rejects a second open anyway, but
// with an opaque error deep in the activation sequence.
const (
	baseCtlExecutable     = "maicoctl"
	baseMonitorExecutable = "maicod"
)

// EnsureSingleInstance scans the process table and fails when another
// instrument binary is already running. Call before touching hardware.
func EnsureSingleInstance() error {
	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	var (
		thisProcessID = os.Getpid()
		instrument    = sliceToSet(instrumentExecutables())
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, ok := instrument[process.Executable()]; ok {
			return fmt.Errorf("%s is already running (pid %d), only one instrument process may hold the device",
				process.Executable(), process.Pid())
		}
	}

	return nil
}

// instrumentExecutables returns the platform-specific names of every
// binary that opens the device.
func instrumentExecutables() []string {
	extension := getExecutableExtension()

	return []string{
		baseCtlExecutable + extension,
		baseMonitorExecutable + extension,
	}
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
