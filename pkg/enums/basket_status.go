package enums

import "fmt"

// BasketStatus tracks a basket through its fulfillment lifecycle.
type BasketStatus string

const (
	BasketStatusScheduled           BasketStatus = "scheduled"
	BasketStatusAwaitingPreparation BasketStatus = "awaiting_preparation"
	BasketStatusInPreparation       BasketStatus = "in_preparation"
	BasketStatusDelivered           BasketStatus = "delivered"
	BasketStatusNotCollected        BasketStatus = "not_collected"
	BasketStatusCancelled           BasketStatus = "cancelled"
)

var validBasketStatuses = []BasketStatus{
	BasketStatusScheduled,
	BasketStatusAwaitingPreparation,
	BasketStatusInPreparation,
	BasketStatusDelivered,
	BasketStatusNotCollected,
	BasketStatusCancelled,
}

// String implements fmt.Stringer.
func (b BasketStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BasketStatus.
func (b BasketStatus) IsValid() bool {
	for _, candidate := range validBasketStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (b BasketStatus) IsTerminal() bool {
	switch b {
	case BasketStatusDelivered, BasketStatusNotCollected, BasketStatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the basket is in the pending super-state
// (scheduled or one of the preparation stages). Active baskets hold their
// product reservations and are subject to the no-show policy.
func (b BasketStatus) IsActive() bool {
	switch b {
	case BasketStatusScheduled, BasketStatusAwaitingPreparation, BasketStatusInPreparation:
		return true
	default:
		return false
	}
}

// ParseBasketStatus converts raw input into a BasketStatus.
func ParseBasketStatus(value string) (BasketStatus, error) {
	for _, candidate := range validBasketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid basket status %q", value)
}
