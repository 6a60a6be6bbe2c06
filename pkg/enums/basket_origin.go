package enums

import "fmt"

// BasketOrigin records how a basket came to exist.
type BasketOrigin string

const (
	BasketOriginManual BasketOrigin = "manual"
	// BasketOriginAssistanceRequest marks baskets derived from an urgent
	// assistance request. Those baskets can never be recurring.
	BasketOriginAssistanceRequest BasketOrigin = "assistance_request"
)

var validBasketOrigins = []BasketOrigin{
	BasketOriginManual,
	BasketOriginAssistanceRequest,
}

// IsValid reports whether the value is a known BasketOrigin.
func (b BasketOrigin) IsValid() bool {
	for _, candidate := range validBasketOrigins {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBasketOrigin converts raw input into a BasketOrigin.
func ParseBasketOrigin(value string) (BasketOrigin, error) {
	for _, candidate := range validBasketOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid basket origin %q", value)
}
