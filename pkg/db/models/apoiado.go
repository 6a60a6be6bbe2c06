package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
)

// Apoiado is a beneficiary of the social store.
type Apoiado struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	StudentNumber *string             `gorm:"column:student_number"`
	Email         *string             `gorm:"column:email"`
	Phone         *string             `gorm:"column:phone"`
	Campus        *string             `gorm:"column:campus"`
	HouseholdSize int                 `gorm:"column:household_size;not null;default:1"`
	Status        enums.ApoiadoStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Notes         *string             `gorm:"column:notes"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
