package basket

import (
	"time"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
)

// NextOccurrence computes the successor pickup date for a recurring basket
// after delivery.
func NextOccurrence(deliveredAt time.Time, recurrenceDays int) time.Time {
	if recurrenceDays <= 0 {
		recurrenceDays = models.DefaultRecurrenceDays
	}
	return deliveredAt.AddDate(0, 0, recurrenceDays)
}

// SuccessorRequestedEvent asks staff to assemble the next basket of a
// recurring cadence. No products are carried over: the delivered units are
// gone and the successor list must be picked fresh from the pool.
type SuccessorRequestedEvent struct {
	BasketID    uuid.UUID `json:"basket_id"`
	ApoiadoID   uuid.UUID `json:"apoiado_id"`
	DeliveredAt time.Time `json:"delivered_at"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func newSuccessorEvent(basket *models.Basket, deliveredAt time.Time) SuccessorRequestedEvent {
	return SuccessorRequestedEvent{
		BasketID:    basket.ID,
		ApoiadoID:   basket.ApoiadoID,
		DeliveredAt: deliveredAt,
		ScheduledAt: NextOccurrence(deliveredAt, basket.RecurrenceDays),
	}
}
