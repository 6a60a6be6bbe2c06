package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBasket  OutboxAggregateType = "basket"
	AggregateProduct OutboxAggregateType = "product"
	AggregateApoiado OutboxAggregateType = "apoiado"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBasket,
	AggregateProduct,
	AggregateApoiado,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBasketCreated            OutboxEventType = "basket_created"
	EventBasketDelivered          OutboxEventType = "basket_delivered"
	EventBasketCancelled          OutboxEventType = "basket_cancelled"
	EventBasketRescheduled        OutboxEventType = "basket_rescheduled"
	EventBasketFaultRecorded      OutboxEventType = "basket_fault_recorded"
	EventBasketNotCollected       OutboxEventType = "basket_not_collected"
	EventBasketProductsEdited     OutboxEventType = "basket_products_edited"
	EventBasketOverdue            OutboxEventType = "basket_overdue"
	EventBasketSuccessorRequested OutboxEventType = "basket_successor_requested"
	EventProductExpiredRemoved    OutboxEventType = "product_expired_removed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBasketCreated,
	EventBasketDelivered,
	EventBasketCancelled,
	EventBasketRescheduled,
	EventBasketFaultRecorded,
	EventBasketNotCollected,
	EventBasketProductsEdited,
	EventBasketOverdue,
	EventBasketSuccessorRequested,
	EventProductExpiredRemoved,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
