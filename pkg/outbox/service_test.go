package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	t.Parallel()

	db := newOutboxTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	basketID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventBasketCreated,
			AggregateType: enums.AggregateBasket,
			AggregateID:   basketID,
			Version:       1,
			Data:          map[string]string{"basket_id": basketID.String()},
		})
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	row := loadSingleEvent(t, db)
	if row.ID == uuid.Nil {
		t.Fatal("emit must mint the row id")
	}
	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Version != 1 || envelope.EventID == "" || envelope.OccurredAt.IsZero() {
		t.Fatalf("incomplete envelope: %+v", envelope)
	}
}

func TestEmitIfNotExistsSkipsDuplicateForAggregate(t *testing.T) {
	t.Parallel()

	db := newOutboxTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	event := DomainEvent{
		EventType:     enums.EventBasketOverdue,
		AggregateType: enums.AggregateBasket,
		AggregateID:   uuid.New(),
		Version:       1,
	}

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, event)
		})
		if err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected one row, got %d", got)
	}
}

func TestEmitIfNotExistsSinceReemitsAfterWindow(t *testing.T) {
	t.Parallel()

	db := newOutboxTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	event := DomainEvent{
		EventType:     enums.EventBasketOverdue,
		AggregateType: enums.AggregateBasket,
		AggregateID:   uuid.New(),
		Version:       1,
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	emit := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExistsSince(context.Background(), tx, event, today)
		})
	}

	if err := emit(); err != nil {
		t.Fatalf("first emit: %v", err)
	}
	if err := emit(); err != nil {
		t.Fatalf("same-day emit: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected same-day rescan to dedupe, got %d rows", got)
	}

	// age the row so it falls outside the next day's window
	yesterday := today.Add(-24 * time.Hour)
	err := db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", event.AggregateID).
		Update("created_at", yesterday).Error
	if err != nil {
		t.Fatalf("age row: %v", err)
	}

	if err := emit(); err != nil {
		t.Fatalf("next-day emit: %v", err)
	}
	if got := countEvents(t, db); got != 2 {
		t.Fatalf("expected a fresh row after the window moved, got %d", got)
	}
}

func newOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:outbox_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate outbox: %v", err)
	}
	return db
}

func loadSingleEvent(t *testing.T, db *gorm.DB) models.OutboxEvent {
	t.Helper()
	var row models.OutboxEvent
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	return row
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.OutboxEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return count
}
