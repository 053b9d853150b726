//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/photonlab/maico/internal/domain/device"
)

// DetectOperator gathers host and user information for the audit trail
// carried in persisted snapshots.
func DetectOperator() (*device.Operator, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &device.Operator{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
