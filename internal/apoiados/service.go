package apoiado

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db"
	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

// Service exposes apoiado onboarding and profile management.
type Service interface {
	CreateApoiado(ctx context.Context, input CreateInput) (*ApoiadoDTO, error)
	UpdateApoiado(ctx context.Context, apoiadoID uuid.UUID, input UpdateInput) (*ApoiadoDTO, error)
	SetStatus(ctx context.Context, apoiadoID uuid.UUID, status enums.ApoiadoStatus) (*ApoiadoDTO, error)
	GetApoiado(ctx context.Context, apoiadoID uuid.UUID) (*ApoiadoDTO, error)
	ListApoiados(ctx context.Context, filters ListFilters, params pagination.Params) (*ApoiadoListResult, error)
}

// CreateInput is the onboarding payload.
type CreateInput struct {
	Name          string
	StudentNumber *string
	Email         *string
	Phone         *string
	Campus        *string
	HouseholdSize int
	Notes         *string
}

// UpdateInput holds optional profile mutations.
type UpdateInput struct {
	Name          *string
	StudentNumber *string
	Email         *string
	Phone         *string
	Campus        *string
	HouseholdSize *int
	Notes         *string
}

// ApoiadoDTO is the apoiado payload returned to clients.
type ApoiadoDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StudentNumber *string   `json:"student_number,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Campus        *string   `json:"campus,omitempty"`
	HouseholdSize int       `json:"household_size"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApoiadoListResult is one cursor page of apoiados.
type ApoiadoListResult struct {
	Apoiados   []ApoiadoDTO `json:"apoiados"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func newDTO(apoiado *models.Apoiado) *ApoiadoDTO {
	return &ApoiadoDTO{
		ID:            apoiado.ID,
		Name:          apoiado.Name,
		StudentNumber: apoiado.StudentNumber,
		Email:         apoiado.Email,
		Phone:         apoiado.Phone,
		Campus:        apoiado.Campus,
		HouseholdSize: apoiado.HouseholdSize,
		Status:        string(apoiado.Status),
		Notes:         apoiado.Notes,
		CreatedAt:     apoiado.CreatedAt,
		UpdatedAt:     apoiado.UpdatedAt,
	}
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs an apoiado service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("apoiado repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateApoiado(ctx context.Context, input CreateInput) (*ApoiadoDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.HouseholdSize < 1 {
		input.HouseholdSize = 1
	}

	apoiado := &models.Apoiado{
		ID:            uuid.New(),
		Name:          name,
		StudentNumber: input.StudentNumber,
		Email:         input.Email,
		Phone:         input.Phone,
		Campus:        input.Campus,
		HouseholdSize: input.HouseholdSize,
		Status:        enums.ApoiadoStatusActive,
		Notes:         input.Notes,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, apoiado); err != nil {
			if db.IsUniqueViolation(err, "ux_apoiados_student_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "student number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create apoiado")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newDTO(apoiado), nil
}

func (s *service) UpdateApoiado(ctx context.Context, apoiadoID uuid.UUID, input UpdateInput) (*ApoiadoDTO, error) {
	var updated *models.Apoiado
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		apoiado, err := repo.FindByID(ctx, apoiadoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "apoiado not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load apoiado")
		}
		if err := applyUpdate(apoiado, input); err != nil {
			return err
		}
		if err := repo.Update(ctx, apoiado); err != nil {
			if db.IsUniqueViolation(err, "ux_apoiados_student_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "student number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update apoiado")
		}
		updated = apoiado
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newDTO(updated), nil
}

func (s *service) SetStatus(ctx context.Context, apoiadoID uuid.UUID, status enums.ApoiadoStatus) (*ApoiadoDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	var updated *models.Apoiado
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		apoiado, err := repo.FindByID(ctx, apoiadoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "apoiado not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load apoiado")
		}
		apoiado.Status = status
		if err := repo.Update(ctx, apoiado); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update apoiado status")
		}
		updated = apoiado
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newDTO(updated), nil
}

func (s *service) GetApoiado(ctx context.Context, apoiadoID uuid.UUID) (*ApoiadoDTO, error) {
	apoiado, err := s.repo.FindByID(ctx, apoiadoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "apoiado not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load apoiado")
	}
	return newDTO(apoiado), nil
}

func (s *service) ListApoiados(ctx context.Context, filters ListFilters, params pagination.Params) (*ApoiadoListResult, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list apoiados")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ApoiadoListResult{Apoiados: make([]ApoiadoDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for i := range rows {
		result.Apoiados = append(result.Apoiados, *newDTO(&rows[i]))
	}
	return result, nil
}

func applyUpdate(apoiado *models.Apoiado, input UpdateInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		apoiado.Name = name
	}
	if input.StudentNumber != nil {
		apoiado.StudentNumber = input.StudentNumber
	}
	if input.Email != nil {
		apoiado.Email = input.Email
	}
	if input.Phone != nil {
		apoiado.Phone = input.Phone
	}
	if input.Campus != nil {
		apoiado.Campus = input.Campus
	}
	if input.HouseholdSize != nil {
		if *input.HouseholdSize < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "household size must be at least 1")
		}
		apoiado.HouseholdSize = *input.HouseholdSize
	}
	if input.Notes != nil {
		apoiado.Notes = input.Notes
	}
	return nil
}
