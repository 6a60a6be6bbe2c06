package basket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
)

func TestRepositoryUpdateGuardsLoadedStatus(t *testing.T) {
	t.Parallel()

	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	id := seedBasket(t, db, enums.BasketStatusScheduled)

	// two staff members load the same scheduled basket
	cancelView, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("load for cancel: %v", err)
	}
	deliverView, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("load for deliver: %v", err)
	}

	canceledAt := time.Now().UTC()
	cancelView.Status = enums.BasketStatusCancelled
	cancelView.CanceledAt = &canceledAt
	if err := repo.Update(ctx, cancelView, enums.BasketStatusScheduled); err != nil {
		t.Fatalf("cancel write: %v", err)
	}

	deliveredAt := canceledAt.Add(time.Second)
	deliverView.Status = enums.BasketStatusDelivered
	deliverView.DeliveredAt = &deliveredAt
	err = repo.Update(ctx, deliverView, enums.BasketStatusScheduled)
	if !errors.Is(err, ErrStaleBasket) {
		t.Fatalf("expected ErrStaleBasket for the second writer, got %v", err)
	}

	stored, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != enums.BasketStatusCancelled {
		t.Fatalf("cancel must win, got status %s", stored.Status)
	}
	if stored.CanceledAt == nil {
		t.Fatal("winning cancel lost its canceled_at timestamp")
	}
	if stored.DeliveredAt != nil {
		t.Fatalf("stale deliver leaked delivered_at %v", stored.DeliveredAt)
	}
}

func TestRepositoryUpdateAppliesWhenStatusMatches(t *testing.T) {
	t.Parallel()

	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	id := seedBasket(t, db, enums.BasketStatusScheduled)

	basket, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rescheduledAt := time.Now().UTC().Add(48 * time.Hour)
	basket.RescheduledAt = &rescheduledAt
	basket.FaultCount = 1
	lastFaultAt := time.Now().UTC()
	basket.LastFaultAt = &lastFaultAt
	if err := repo.Update(ctx, basket, enums.BasketStatusScheduled); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.FaultCount != 1 || stored.RescheduledAt == nil || stored.LastFaultAt == nil {
		t.Fatalf("fault reschedule not persisted: %+v", stored)
	}
}

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:baskets_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Basket{}, &models.BasketItem{}); err != nil {
		t.Fatalf("migrate baskets: %v", err)
	}
	return db
}

func seedBasket(t *testing.T, db *gorm.DB, status enums.BasketStatus) uuid.UUID {
	t.Helper()
	basket := models.Basket{
		ID:             uuid.New(),
		ApoiadoID:      uuid.New(),
		Status:         status,
		ScheduledAt:    time.Now().UTC().Add(-24 * time.Hour),
		Origin:         enums.BasketOriginManual,
		RecurrenceDays: models.DefaultRecurrenceDays,
	}
	if err := db.Create(&basket).Error; err != nil {
		t.Fatalf("seed basket: %v", err)
	}
	return basket.ID
}
