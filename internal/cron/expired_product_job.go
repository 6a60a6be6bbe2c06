package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	"github.com/lojasocial-app/lojasocial-backend/pkg/outbox"
)

type expiredProductStore interface {
	ListExpiredAvailable(ctx context.Context, now time.Time) ([]models.Product, error)
	ListExpiredReserved(ctx context.Context, now time.Time) ([]models.Product, error)
	RemoveExpired(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

// ExpiredProductJobParams configure the expired stock sweep.
type ExpiredProductJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Products expiredProductStore
	Outbox   outboxEmitter
}

// ExpiredProductEvent records a unit pulled from the pool past its expiry date.
type ExpiredProductEvent struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// NewExpiredProductJob builds the job that retires expired pool units.
// Reserved units past expiry are only reported; releasing them is a staff
// decision tied to the basket they belong to.
func NewExpiredProductJob(params ExpiredProductJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &expiredProductJob{
		logg:     params.Logger,
		db:       params.DB,
		products: params.Products,
		outbox:   params.Outbox,
		now:      time.Now,
	}, nil
}

type expiredProductJob struct {
	logg     *logger.Logger
	db       txRunner
	products expiredProductStore
	outbox   outboxEmitter
	now      func() time.Time
}

func (j *expiredProductJob) Name() string { return "expired-products" }

func (j *expiredProductJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	expired, err := j.products.ListExpiredAvailable(ctx, now)
	if err != nil {
		return fmt.Errorf("list expired units: %w", err)
	}

	var errs []error
	removed := 0
	for i := range expired {
		unit := expired[i]
		if err := j.removeUnit(ctx, unit); err != nil {
			errs = append(errs, fmt.Errorf("remove unit %s: %w", unit.ID, err))
			continue
		}
		removed++
	}

	reserved, err := j.products.ListExpiredReserved(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("list expired reserved units: %w", err))
	}
	for i := range reserved {
		unit := reserved[i]
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"product_id": unit.ID.String(),
			"basket_id":  basketIDField(unit.BasketID),
			"expired_at": unit.ExpiryDate,
		})
		j.logg.Warn(logCtx, "reserved unit past expiry, needs staff review")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired":  len(expired),
		"removed":  removed,
		"reserved": len(reserved),
	})
	j.logg.Info(logCtx, "expired product sweep complete")
	return multierr.Combine(errs...)
}

func (j *expiredProductJob) removeUnit(ctx context.Context, unit models.Product) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := j.products.RemoveExpired(ctx, tx, unit.ID)
		if err != nil {
			return err
		}
		if !updated {
			// Reserved between the scan and this update. Leave it alone.
			return nil
		}
		return j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductExpiredRemoved,
			AggregateType: enums.AggregateProduct,
			AggregateID:   unit.ID,
			Version:       1,
			Data: ExpiredProductEvent{
				ProductID:  unit.ID.String(),
				Name:       unit.Name,
				ExpiryDate: derefTime(unit.ExpiryDate),
			},
		})
	})
}

func basketIDField(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
