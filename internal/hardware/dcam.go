package hardware

import (
	"github.com/photonlab/maico/internal/domain/device"
)

// newDCAM constructs the native DCAM backend. The binding is linked in
// vendor builds via cgo against the DCAM-API SDK; in open builds the
// library is not present and construction fails, which callers surface
// as "use simulation mode". The simulator implements the identical
// contract, so nothing above this package changes between the two.
func newDCAM() (Interface, error) {
	return nil, device.NewHardware(
		device.KindLibraryInitFailed,
		"DCAM binding not available in this build, enable simulation mode",
		CodeUnloaded,
	)
}
