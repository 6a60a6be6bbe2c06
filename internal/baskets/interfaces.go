package basket

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

// ListFilters narrows the basket listing.
type ListFilters struct {
	ApoiadoID *uuid.UUID
	Status    *enums.BasketStatus
	Origin    *enums.BasketOrigin
	Recurring *bool
}

// ErrStaleBasket reports that a conditional basket update matched no row:
// another transition changed the status between the load and the write.
var ErrStaleBasket = errors.New("basket was modified concurrently")

// Repository defines basket persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, basket *models.Basket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error)
	Update(ctx context.Context, basket *models.Basket, expected enums.BasketStatus) error
	ReplaceItems(ctx context.Context, basketID uuid.UUID, items []models.BasketItem) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Basket, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.Basket, error)
	FindAssistanceRequest(ctx context.Context, id uuid.UUID) (*models.AssistanceRequest, error)
	UpdateAssistanceRequestStatus(ctx context.Context, id uuid.UUID, status enums.AssistanceRequestStatus) error
}
