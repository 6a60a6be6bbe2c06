package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db"
	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

// MaxIntakeQuantity caps how many identical units one intake call may mint.
const MaxIntakeQuantity = 500

// Service exposes donation intake and stock management operations.
type Service interface {
	IntakeDonation(ctx context.Context, staffID uuid.UUID, input IntakeInput) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	RemoveProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductListResult, error)
	AvailabilityGroups(ctx context.Context) ([]AvailabilityGroupDTO, error)
}

// IntakeInput describes one donated product line. Quantity expands into that
// many individual units.
type IntakeInput struct {
	Name        string
	Category    enums.ProductCategory
	Subcategory *string
	Brand       *string
	Donor       *string
	PartnerName *string
	Campaign    *string
	Barcode     *string
	ExpiryDate  *time.Time
	SizeValue   decimal.Decimal
	SizeUnit    *string
	Description *string
	Quantity    int
}

// UpdateInput holds optional mutation values for a unit still in the pool.
type UpdateInput struct {
	Name        *string
	Category    *enums.ProductCategory
	Subcategory *string
	Brand       *string
	Donor       *string
	PartnerName *string
	Campaign    *string
	Barcode     *string
	ExpiryDate  *time.Time
	SizeValue   *decimal.Decimal
	SizeUnit    *string
	Description *string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// IntakeDonation mints Quantity unit rows from the descriptor. One physical
// can equals one row; counts are never pooled.
func (s *service) IntakeDonation(ctx context.Context, staffID uuid.UUID, input IntakeInput) ([]ProductDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.Quantity < 1 || input.Quantity > MaxIntakeQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", MaxIntakeQuantity))
	}
	if input.SizeValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size value cannot be negative")
	}

	units := make([]models.Product, 0, input.Quantity)
	for i := 0; i < input.Quantity; i++ {
		staff := staffID
		units = append(units, models.Product{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(input.Name),
			Category:    input.Category,
			Subcategory: input.Subcategory,
			Brand:       input.Brand,
			Donor:       input.Donor,
			PartnerName: input.PartnerName,
			Campaign:    input.Campaign,
			Barcode:     input.Barcode,
			ExpiryDate:  input.ExpiryDate,
			SizeValue:   input.SizeValue,
			SizeUnit:    input.SizeUnit,
			Description: input.Description,
			Status:      enums.ProductStatusAvailable,
			StaffID:     &staff,
		})
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateBatch(ctx, units)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist donated units")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"units": len(units), "name": units[0].Name})
		s.logg.Info(logCtx, "donation intake recorded")
	}

	dtos := make([]ProductDTO, 0, len(units))
	for i := range units {
		dtos = append(dtos, *NewProductDTO(&units[i]))
	}
	return dtos, nil
}

// UpdateProduct edits a unit still sitting in the available pool. Reserved and
// delivered units are frozen so basket contents stay truthful.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.Status != enums.ProductStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("product is %s and cannot be edited", product.Status))
		}
		if err := applyUpdate(product, input); err != nil {
			return err
		}
		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

// RemoveProduct withdraws an available unit from circulation.
func (s *service) RemoveProduct(ctx context.Context, productID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.Status != enums.ProductStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("product is %s and cannot be removed", product.Status))
		}
		product.Status = enums.ProductStatusRemoved
		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove product")
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductListResult, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// AvailabilityGroups buckets the available pool by product identity so staff
// see "12 x canned beans 0.4kg" instead of twelve separate rows.
func (s *service) AvailabilityGroups(ctx context.Context) ([]AvailabilityGroupDTO, error) {
	units, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available products")
	}

	groups := GroupByIdentity(units)
	dtos := make([]AvailabilityGroupDTO, 0, len(groups))
	for id, members := range groups {
		dto := AvailabilityGroupDTO{
			Key:       id.Key(),
			Name:      id.Name,
			Category:  id.Category,
			SizeValue: id.SizeValue,
			SizeUnit:  id.SizeUnit,
			ExpiryDay: id.ExpiryDay,
			Count:     len(members),
			Units:     make([]ProductDTO, 0, len(members)),
		}
		for i := range members {
			dto.Units = append(dto.Units, *NewProductDTO(&members[i]))
		}
		dtos = append(dtos, dto)
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Key < dtos[j].Key })
	return dtos, nil
}

func applyUpdate(product *models.Product, input UpdateInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
		}
		product.Category = *input.Category
	}
	if input.Subcategory != nil {
		product.Subcategory = input.Subcategory
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Donor != nil {
		product.Donor = input.Donor
	}
	if input.PartnerName != nil {
		product.PartnerName = input.PartnerName
	}
	if input.Campaign != nil {
		product.Campaign = input.Campaign
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}
	if input.ExpiryDate != nil {
		product.ExpiryDate = input.ExpiryDate
	}
	if input.SizeValue != nil {
		if input.SizeValue.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "size value cannot be negative")
		}
		product.SizeValue = *input.SizeValue
	}
	if input.SizeUnit != nil {
		product.SizeUnit = input.SizeUnit
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	return nil
}
