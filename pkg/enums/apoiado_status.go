package enums

import "fmt"

// ApoiadoStatus tracks whether a beneficiary is currently supported.
type ApoiadoStatus string

const (
	ApoiadoStatusActive    ApoiadoStatus = "active"
	ApoiadoStatusSuspended ApoiadoStatus = "suspended"
	ApoiadoStatusExited    ApoiadoStatus = "exited"
)

var validApoiadoStatuses = []ApoiadoStatus{
	ApoiadoStatusActive,
	ApoiadoStatusSuspended,
	ApoiadoStatusExited,
}

// IsValid reports whether the value is a known ApoiadoStatus.
func (a ApoiadoStatus) IsValid() bool {
	for _, candidate := range validApoiadoStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApoiadoStatus converts raw input into an ApoiadoStatus.
func ParseApoiadoStatus(value string) (ApoiadoStatus, error) {
	for _, candidate := range validApoiadoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid apoiado status %q", value)
}
