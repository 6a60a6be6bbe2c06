package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	"github.com/lojasocial-app/lojasocial-backend/pkg/outbox"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExistsSince(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent, since time.Time) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type overdueBasketReader interface {
	ListOverdue(ctx context.Context, now time.Time) ([]models.Basket, error)
}

// OverdueBasketJobParams configure the overdue basket scanner.
type OverdueBasketJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Baskets overdueBasketReader
	Outbox  outboxEmitter
}

// OverdueBasketEvent flags a basket whose pickup date has passed. The fault
// counter is staff-driven; this job only surfaces the overdue condition.
type OverdueBasketEvent struct {
	BasketID      string    `json:"basket_id"`
	ApoiadoID     string    `json:"apoiado_id"`
	EffectiveDate time.Time `json:"effective_date"`
	FaultCount    int       `json:"fault_count"`
}

// NewOverdueBasketJob builds the job that emits overdue notifications.
func NewOverdueBasketJob(params OverdueBasketJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Baskets == nil {
		return nil, fmt.Errorf("basket reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &overdueBasketJob{
		logg:    params.Logger,
		db:      params.DB,
		baskets: params.Baskets,
		outbox:  params.Outbox,
		now:     time.Now,
	}, nil
}

type overdueBasketJob struct {
	logg    *logger.Logger
	db      txRunner
	baskets overdueBasketReader
	outbox  outboxEmitter
	now     func() time.Time
}

func (j *overdueBasketJob) Name() string { return "overdue-baskets" }

func (j *overdueBasketJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	// flag each basket at most once per calendar day
	dayStart := now.Truncate(24 * time.Hour)
	baskets, err := j.baskets.ListOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("list overdue baskets: %w", err)
	}
	if len(baskets) == 0 {
		return nil
	}

	var errs []error
	flagged := 0
	for i := range baskets {
		basket := baskets[i]
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.outbox.EmitIfNotExistsSince(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBasketOverdue,
				AggregateType: enums.AggregateBasket,
				AggregateID:   basket.ID,
				Version:       1,
				Data: OverdueBasketEvent{
					BasketID:      basket.ID.String(),
					ApoiadoID:     basket.ApoiadoID.String(),
					EffectiveDate: basket.EffectiveDate(),
					FaultCount:    basket.FaultCount,
				},
			}, dayStart)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("flag basket %s: %w", basket.ID, err))
			continue
		}
		flagged++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"overdue": len(baskets),
		"flagged": flagged,
	})
	j.logg.Info(logCtx, "overdue basket scan complete")
	return multierr.Combine(errs...)
}
