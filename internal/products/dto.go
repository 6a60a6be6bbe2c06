package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
)

// ProductDTO represents one donated unit returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory *string         `json:"subcategory,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	Donor       *string         `json:"donor,omitempty"`
	PartnerName *string         `json:"partner_name,omitempty"`
	Campaign    *string         `json:"campaign,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	SizeValue   decimal.Decimal `json:"size_value"`
	SizeUnit    *string         `json:"size_unit,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      string          `json:"status"`
	BasketID    *uuid.UUID      `json:"basket_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Category:    string(product.Category),
		Subcategory: product.Subcategory,
		Brand:       product.Brand,
		Donor:       product.Donor,
		PartnerName: product.PartnerName,
		Campaign:    product.Campaign,
		Barcode:     product.Barcode,
		ExpiryDate:  product.ExpiryDate,
		SizeValue:   product.SizeValue,
		SizeUnit:    product.SizeUnit,
		Description: product.Description,
		Status:      string(product.Status),
		BasketID:    product.BasketID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// ProductListResult is one cursor page of units.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// AvailabilityGroupDTO is one identity bucket of interchangeable pool units.
type AvailabilityGroupDTO struct {
	Key       string       `json:"key"`
	Name      string       `json:"name"`
	Category  string       `json:"category"`
	SizeValue string       `json:"size_value,omitempty"`
	SizeUnit  string       `json:"size_unit,omitempty"`
	ExpiryDay string       `json:"expiry_day,omitempty"`
	Count     int          `json:"count"`
	Units     []ProductDTO `json:"units"`
}
