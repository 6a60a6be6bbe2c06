package apoiado

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

// Repository handles apoiado persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Apoiado, error) {
	var apoiado models.Apoiado
	if err := r.db.WithContext(ctx).First(&apoiado, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &apoiado, nil
}

func (r *Repository) Create(ctx context.Context, apoiado *models.Apoiado) error {
	return r.db.WithContext(ctx).Create(apoiado).Error
}

func (r *Repository) Update(ctx context.Context, apoiado *models.Apoiado) error {
	return r.db.WithContext(ctx).Save(apoiado).Error
}

// ListFilters narrows the apoiado listing.
type ListFilters struct {
	Status *enums.ApoiadoStatus
	Query  string
}

// List returns a cursor page ordered by creation time.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Apoiado, error) {
	q := r.db.WithContext(ctx).Model(&models.Apoiado{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
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

	var apoiados []models.Apoiado
	err = q.Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&apoiados).Error
	return apoiados, err
}
