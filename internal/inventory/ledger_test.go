package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

func TestReserveClaimsAvailableUnits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	basketID := uuid.New()
	unitA := seedProduct(t, db, enums.ProductStatusAvailable, nil)
	unitB := seedProduct(t, db, enums.ProductStatusAvailable, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, basketID, []uuid.UUID{unitA, unitB})
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	for _, id := range []uuid.UUID{unitA, unitB} {
		product := loadProduct(t, db, id)
		if product.Status != enums.ProductStatusReserved {
			t.Fatalf("expected reserved, got %s", product.Status)
		}
		if product.BasketID == nil || *product.BasketID != basketID {
			t.Fatalf("expected basket owner %s, got %v", basketID, product.BasketID)
		}
	}
}

func TestReserveIsAllOrNothing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	winner := uuid.New()
	loser := uuid.New()
	free := seedProduct(t, db, enums.ProductStatusAvailable, nil)
	taken := seedProduct(t, db, enums.ProductStatusReserved, &winner)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, loser, []uuid.UUID{free, taken})
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	// the rollback must return the free unit to the pool
	product := loadProduct(t, db, free)
	if product.Status != enums.ProductStatusAvailable || product.BasketID != nil {
		t.Fatalf("expected free unit untouched, got %+v", product)
	}
}

func TestReserveRejectsMissingProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, uuid.New(), []uuid.UUID{uuid.New()})
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReserveRejectsDuplicateListing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	unit := seedProduct(t, db, enums.ProductStatusAvailable, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, uuid.New(), []uuid.UUID{unit, unit})
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseReturnsUnitsAndToleratesRetries(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	basketID := uuid.New()
	unit := seedProduct(t, db, enums.ProductStatusReserved, &basketID)

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return Release(ctx, tx, basketID, []uuid.UUID{unit})
		})
		if err != nil {
			t.Fatalf("release: %v", err)
		}
	}

	product := loadProduct(t, db, unit)
	if product.Status != enums.ProductStatusAvailable || product.BasketID != nil {
		t.Fatalf("expected available unit, got %+v", product)
	}
}

func TestReleaseGuardsOwnership(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()
	unit := seedProduct(t, db, enums.ProductStatusReserved, &owner)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, intruder, []uuid.UUID{unit})
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	product := loadProduct(t, db, unit)
	if product.Status != enums.ProductStatusReserved || *product.BasketID != owner {
		t.Fatalf("expected reservation intact, got %+v", product)
	}
}

func TestDeliverMarksReservedUnits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	basketID := uuid.New()
	unit := seedProduct(t, db, enums.ProductStatusReserved, &basketID)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Deliver(ctx, tx, basketID, []uuid.UUID{unit})
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	product := loadProduct(t, db, unit)
	if product.Status != enums.ProductStatusDelivered {
		t.Fatalf("expected delivered, got %s", product.Status)
	}
	if product.BasketID == nil || *product.BasketID != basketID {
		t.Fatalf("expected basket owner retained, got %v", product.BasketID)
	}
}

func TestDeliverRejectsUnreservedUnit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	unit := seedProduct(t, db, enums.ProductStatusAvailable, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Deliver(ctx, tx, uuid.New(), []uuid.UUID{unit})
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, status enums.ProductStatus, basketID *uuid.UUID) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:       uuid.New(),
		Name:     "canned beans",
		Category: enums.ProductCategoryFood,
		Status:   status,
		BasketID: basketID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func loadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product
}
