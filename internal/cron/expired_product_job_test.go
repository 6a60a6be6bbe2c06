package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

func TestExpiredProductJobRemovesExpiredUnits(t *testing.T) {
	now := time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, -1)
	unit := models.Product{
		ID:         uuid.New(),
		Name:       "arroz agulha 1kg",
		Category:   enums.ProductCategoryFood,
		Status:     enums.ProductStatusAvailable,
		ExpiryDate: &expiry,
	}
	store := &fakeExpiredProductStore{available: []models.Product{unit}, removable: true}
	outboxSvc := &fakeOutboxService{}
	job := newExpiredProductJobTest(t, store, outboxSvc)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != unit.ID {
		t.Fatalf("expected unit %s removed, got %v", unit.ID, store.removed)
	}
	if len(outboxSvc.idempotent) != 1 {
		t.Fatalf("expected 1 event, got %d", len(outboxSvc.idempotent))
	}
	event := outboxSvc.idempotent[0]
	if event.EventType != enums.EventProductExpiredRemoved {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	payload, ok := event.Data.(ExpiredProductEvent)
	if !ok {
		t.Fatal("expected expired product payload")
	}
	if payload.Name != unit.Name {
		t.Fatalf("unexpected name: %s", payload.Name)
	}
	if !payload.ExpiryDate.Equal(expiry) {
		t.Fatalf("unexpected expiry: %s", payload.ExpiryDate)
	}
}

func TestExpiredProductJobSkipsUnitReservedMidSweep(t *testing.T) {
	expiry := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	unit := models.Product{
		ID:         uuid.New(),
		Name:       "leite meio gordo 1l",
		Status:     enums.ProductStatusAvailable,
		ExpiryDate: &expiry,
	}
	store := &fakeExpiredProductStore{available: []models.Product{unit}, removable: false}
	outboxSvc := &fakeOutboxService{}
	job := newExpiredProductJobTest(t, store, outboxSvc)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outboxSvc.idempotent) != 0 {
		t.Fatalf("expected no events when the status guard loses, got %d", len(outboxSvc.idempotent))
	}
}

func TestExpiredProductJobReportsReservedUnitsWithoutTouchingThem(t *testing.T) {
	expiry := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	basketID := uuid.New()
	unit := models.Product{
		ID:         uuid.New(),
		Name:       "atum em lata",
		Status:     enums.ProductStatusReserved,
		BasketID:   &basketID,
		ExpiryDate: &expiry,
	}
	store := &fakeExpiredProductStore{reserved: []models.Product{unit}}
	outboxSvc := &fakeOutboxService{}
	job := newExpiredProductJobTest(t, store, outboxSvc)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.removed) != 0 {
		t.Fatalf("expected no removals, got %v", store.removed)
	}
	if len(outboxSvc.idempotent) != 0 {
		t.Fatalf("expected no events, got %d", len(outboxSvc.idempotent))
	}
}

func newExpiredProductJobTest(t *testing.T, store *fakeExpiredProductStore, outboxSvc *fakeOutboxService) *expiredProductJob {
	t.Helper()
	jobIface, err := NewExpiredProductJob(ExpiredProductJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		DB:       fakeTxRunner{},
		Products: store,
		Outbox:   outboxSvc,
	})
	if err != nil {
		t.Fatalf("NewExpiredProductJob: %v", err)
	}
	job, ok := jobIface.(*expiredProductJob)
	if !ok {
		t.Fatalf("expected expiredProductJob, got %T", jobIface)
	}
	return job
}

type fakeExpiredProductStore struct {
	available []models.Product
	reserved  []models.Product
	removable bool
	removed   []uuid.UUID
}

func (f *fakeExpiredProductStore) ListExpiredAvailable(ctx context.Context, now time.Time) ([]models.Product, error) {
	return f.available, nil
}

func (f *fakeExpiredProductStore) ListExpiredReserved(ctx context.Context, now time.Time) ([]models.Product, error) {
	return f.reserved, nil
}

func (f *fakeExpiredProductStore) RemoveExpired(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	if !f.removable {
		return false, nil
	}
	f.removed = append(f.removed, id)
	return true, nil
}
