package basket

import (
	"time"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
)

// BasketDTO is the basket payload returned to clients.
type BasketDTO struct {
	ID             uuid.UUID   `json:"id"`
	ApoiadoID      uuid.UUID   `json:"apoiado_id"`
	StaffID        *uuid.UUID  `json:"staff_id,omitempty"`
	Status         string      `json:"status"`
	ScheduledAt    time.Time   `json:"scheduled_at"`
	RescheduledAt  *time.Time  `json:"rescheduled_at,omitempty"`
	DeliveredAt    *time.Time  `json:"delivered_at,omitempty"`
	CanceledAt     *time.Time  `json:"canceled_at,omitempty"`
	LastFaultAt    *time.Time  `json:"last_fault_at,omitempty"`
	FaultCount     int         `json:"fault_count"`
	Origin         string      `json:"origin"`
	RequestID      *uuid.UUID  `json:"request_id,omitempty"`
	Recurring      bool        `json:"recurring"`
	RecurrenceDays int         `json:"recurrence_days"`
	Notes          *string     `json:"notes,omitempty"`
	ProductIDs     []uuid.UUID `json:"product_ids"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewBasketDTO builds a DTO from the persisted model.
func NewBasketDTO(basket *models.Basket) *BasketDTO {
	productIDs := make([]uuid.UUID, 0, len(basket.Items))
	for _, item := range basket.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	return &BasketDTO{
		ID:             basket.ID,
		ApoiadoID:      basket.ApoiadoID,
		StaffID:        basket.StaffID,
		Status:         string(basket.Status),
		ScheduledAt:    basket.ScheduledAt,
		RescheduledAt:  basket.RescheduledAt,
		DeliveredAt:    basket.DeliveredAt,
		CanceledAt:     basket.CanceledAt,
		LastFaultAt:    basket.LastFaultAt,
		FaultCount:     basket.FaultCount,
		Origin:         string(basket.Origin),
		RequestID:      basket.RequestID,
		Recurring:      basket.Recurring,
		RecurrenceDays: basket.RecurrenceDays,
		Notes:          basket.Notes,
		ProductIDs:     productIDs,
		CreatedAt:      basket.CreatedAt,
		UpdatedAt:      basket.UpdatedAt,
	}
}

// BasketListResult is one cursor page of baskets.
type BasketListResult struct {
	Baskets    []BasketDTO `json:"baskets"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
