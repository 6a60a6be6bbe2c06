package product

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

// Repository wires together all product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product unit.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads several units in one query.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// CreateBatch inserts the donated units in a single statement.
func (r *Repository) CreateBatch(ctx context.Context, units []models.Product) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&units).Error
}

// Update persists the mutable fields of a unit.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// ListFilters describe the supported filter knobs for the intake listing.
type ListFilters struct {
	Status   *enums.ProductStatus
	Category *enums.ProductCategory
	Donor    string
	Campaign string
	Query    string
}

// List returns a cursor page of units ordered by creation time.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.Category != nil {
		q = q.Where("category = ?", *filters.Category)
	}
	if filters.Donor != "" {
		q = q.Where("donor = ?", filters.Donor)
	}
	if filters.Campaign != "" {
		q = q.Where("campaign = ?", filters.Campaign)
	}
	if filters.Query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+filters.Query+"%")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	err = q.Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&products).Error
	return products, err
}

// ListAvailable returns every unit currently in the pool.
func (r *Repository) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ProductStatusAvailable).
		Order("created_at ASC").
		Find(&products).Error
	return products, err
}

// ListExpiredAvailable returns pool units whose expiry date has passed.
func (r *Repository) ListExpiredAvailable(ctx context.Context, now time.Time) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", enums.ProductStatusAvailable, now).
		Find(&products).Error
	return products, err
}

// ListExpiredReserved returns reserved units past expiry, left untouched for
// staff review.
func (r *Repository) ListExpiredReserved(ctx context.Context, now time.Time) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", enums.ProductStatusReserved, now).
		Find(&products).Error
	return products, err
}

// RemoveExpired retires a pool unit past expiry. The status guard keeps the
// sweep from touching a unit a concurrent basket just reserved. Returns false
// when the guard lost.
func (r *Repository) RemoveExpired(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND status = ?", id, enums.ProductStatusAvailable).
		Update("status", enums.ProductStatusRemoved)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
