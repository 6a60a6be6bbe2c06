package enums

import "fmt"

// AssistanceRequestStatus tracks an urgent-assistance request.
type AssistanceRequestStatus string

const (
	AssistanceRequestStatusOpen   AssistanceRequestStatus = "open"
	AssistanceRequestStatusLinked AssistanceRequestStatus = "linked"
	AssistanceRequestStatusClosed AssistanceRequestStatus = "closed"
)

var validAssistanceRequestStatuses = []AssistanceRequestStatus{
	AssistanceRequestStatusOpen,
	AssistanceRequestStatusLinked,
	AssistanceRequestStatusClosed,
}

// IsValid reports whether the value is a known AssistanceRequestStatus.
func (a AssistanceRequestStatus) IsValid() bool {
	for _, candidate := range validAssistanceRequestStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssistanceRequestStatus converts raw input into an AssistanceRequestStatus.
func ParseAssistanceRequestStatus(value string) (AssistanceRequestStatus, error) {
	for _, candidate := range validAssistanceRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assistance request status %q", value)
}
