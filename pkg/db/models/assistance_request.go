package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
)

// AssistanceRequest is an urgent ask filed by or for an apoiado. A basket
// created from one carries origin assistance_request and can never recur.
type AssistanceRequest struct {
	ID        uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey"`
	ApoiadoID uuid.UUID                     `gorm:"column:apoiado_id;type:uuid;not null"`
	Reason    string                        `gorm:"column:reason;not null"`
	Status    enums.AssistanceRequestStatus `gorm:"column:status;type:text;not null;default:'open'"`
	CreatedAt time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
