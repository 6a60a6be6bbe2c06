package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
)

// Product represents one physical donated unit. Units are never pooled by
// quantity: two identical cans are two rows, each reservable on its own.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Subcategory *string               `gorm:"column:subcategory"`
	Brand       *string               `gorm:"column:brand"`
	Donor       *string               `gorm:"column:donor"`
	PartnerName *string               `gorm:"column:partner_name"`
	Campaign    *string               `gorm:"column:campaign"`
	Barcode     *string               `gorm:"column:barcode"`
	ExpiryDate  *time.Time            `gorm:"column:expiry_date"`
	SizeValue   decimal.Decimal       `gorm:"column:size_value;type:numeric(10,3);not null;default:0"`
	SizeUnit    *string               `gorm:"column:size_unit"`
	Description *string               `gorm:"column:description"`
	Status      enums.ProductStatus   `gorm:"column:status;type:text;not null;default:'available'"`
	// BasketID is the exclusive reservation owner while Status is reserved
	// or delivered. NULL whenever the unit sits in the available pool.
	BasketID  *uuid.UUID `gorm:"column:basket_id;type:uuid"`
	StaffID   *uuid.UUID `gorm:"column:staff_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
