package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
)

// FaultLimit is the three-strike ceiling on missed pickups. The third fault
// forces the basket into not_collected.
const FaultLimit = 3

// DefaultRecurrenceDays is the fixed cadence for recurring baskets.
const DefaultRecurrenceDays = 30

// Basket is a scheduled bundle of donated products promised to one apoiado.
type Basket struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ApoiadoID     uuid.UUID          `gorm:"column:apoiado_id;type:uuid;not null"`
	StaffID       *uuid.UUID         `gorm:"column:staff_id;type:uuid"`
	Status        enums.BasketStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	ScheduledAt   time.Time          `gorm:"column:scheduled_at;not null"`
	RescheduledAt *time.Time         `gorm:"column:rescheduled_at"`
	DeliveredAt   *time.Time         `gorm:"column:delivered_at"`
	CanceledAt    *time.Time         `gorm:"column:canceled_at"`
	LastFaultAt   *time.Time         `gorm:"column:last_fault_at"`
	FaultCount    int                `gorm:"column:fault_count;not null;default:0"`
	Origin        enums.BasketOrigin `gorm:"column:origin;type:text;not null;default:'manual'"`
	RequestID     *uuid.UUID         `gorm:"column:request_id;type:uuid"`
	Recurring     bool               `gorm:"column:recurring;not null;default:false"`
	// RecurrenceDays is persisted for forward compatibility but the policy
	// currently pins it to DefaultRecurrenceDays.
	RecurrenceDays int          `gorm:"column:recurrence_days;not null;default:30"`
	Notes          *string      `gorm:"column:notes"`
	Items          []BasketItem `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveDate is the reference pickup date: the reschedule date when one
// was set, otherwise the original scheduled date.
func (b Basket) EffectiveDate() time.Time {
	if b.RescheduledAt != nil {
		return *b.RescheduledAt
	}
	return b.ScheduledAt
}

// IsOverdue reports whether the effective pickup date has passed.
func (b Basket) IsOverdue(now time.Time) bool {
	return now.After(b.EffectiveDate())
}

// BasketItem is one product reference inside a basket. A product appears in a
// basket at most once.
type BasketItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BasketID  uuid.UUID `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:ux_basket_items_basket_product,priority:1"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_basket_items_basket_product,priority:2"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
