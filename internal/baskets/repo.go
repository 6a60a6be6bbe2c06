package basket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a basket repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, basket *models.Basket) error {
	return r.db.WithContext(ctx).Create(basket).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

// Update persists a lifecycle transition. The write is conditional on the
// status the caller loaded so that concurrent transitions cannot both apply:
// whichever commits first flips the status and the loser's guard misses.
func (r *repository) Update(ctx context.Context, basket *models.Basket, expected enums.BasketStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Basket{}).
		Where("id = ? AND status = ?", basket.ID, expected).
		Updates(map[string]any{
			"status":         basket.Status,
			"rescheduled_at": basket.RescheduledAt,
			"delivered_at":   basket.DeliveredAt,
			"canceled_at":    basket.CanceledAt,
			"fault_count":    basket.FaultCount,
			"last_fault_at":  basket.LastFaultAt,
			"notes":          basket.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleBasket
	}
	return nil
}

func (r *repository) ReplaceItems(ctx context.Context, basketID uuid.UUID, items []models.BasketItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("basket_id = ?", basketID).Delete(&models.BasketItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Basket, error) {
	q := r.db.WithContext(ctx).Model(&models.Basket{}).Preload("Items")
	if filters.ApoiadoID != nil {
		q = q.Where("apoiado_id = ?", *filters.ApoiadoID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.Origin != nil {
		q = q.Where("origin = ?", *filters.Origin)
	}
	if filters.Recurring != nil {
		q = q.Where("recurring = ?", *filters.Recurring)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var baskets []models.Basket
	err = q.Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&baskets).Error
	return baskets, err
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time) ([]models.Basket, error) {
	var baskets []models.Basket
	err := r.db.WithContext(ctx).
		Where("status IN ?", activeStatuses()).
		Where("COALESCE(rescheduled_at, scheduled_at) < ?", now).
		Order("scheduled_at ASC").
		Find(&baskets).Error
	return baskets, err
}

func (r *repository) FindAssistanceRequest(ctx context.Context, id uuid.UUID) (*models.AssistanceRequest, error) {
	var request models.AssistanceRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) UpdateAssistanceRequestStatus(ctx context.Context, id uuid.UUID, status enums.AssistanceRequestStatus) error {
	return r.db.WithContext(ctx).Model(&models.AssistanceRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func activeStatuses() []enums.BasketStatus {
	return []enums.BasketStatus{
		enums.BasketStatusScheduled,
		enums.BasketStatusAwaitingPreparation,
		enums.BasketStatusInPreparation,
	}
}
