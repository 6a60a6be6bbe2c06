package enums

import "fmt"

// ProductStatus is the reservation-ledger state of a single donated unit.
type ProductStatus string

const (
	ProductStatusAvailable ProductStatus = "available"
	ProductStatusReserved  ProductStatus = "reserved"
	ProductStatusDelivered ProductStatus = "delivered"
	// ProductStatusRemoved covers units taken out of circulation: donated
	// onward or discarded past their expiry date.
	ProductStatusRemoved ProductStatus = "removed"
	ProductStatusUnknown ProductStatus = "unknown"
)

var validProductStatuses = []ProductStatus{
	ProductStatusAvailable,
	ProductStatusReserved,
	ProductStatusDelivered,
	ProductStatusRemoved,
	ProductStatusUnknown,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsFinal reports whether the unit can never return to the available pool.
func (p ProductStatus) IsFinal() bool {
	return p == ProductStatusDelivered || p == ProductStatusRemoved
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
