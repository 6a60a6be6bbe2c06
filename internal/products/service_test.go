package product

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

func TestApplyUpdateTrimsAndCopies(t *testing.T) {
	product := &models.Product{
		Name:     "old name",
		Category: enums.ProductCategoryOther,
	}

	category := enums.ProductCategoryFood
	size := decimal.RequireFromString("1.5")
	input := UpdateInput{
		Name:      stringPtr("  New Name "),
		Category:  &category,
		SizeValue: &size,
		SizeUnit:  stringPtr("kg"),
	}

	if err := applyUpdate(product, input); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if product.Name != "New Name" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if product.Category != enums.ProductCategoryFood {
		t.Fatalf("expected food category, got %s", product.Category)
	}
	if !product.SizeValue.Equal(size) {
		t.Fatalf("expected size 1.5, got %s", product.SizeValue)
	}
}

func TestApplyUpdateRejectsEmptyName(t *testing.T) {
	product := &models.Product{Name: "kept"}

	err := applyUpdate(product, UpdateInput{Name: stringPtr("   ")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if product.Name != "kept" {
		t.Fatalf("expected name untouched, got %q", product.Name)
	}
}

func TestApplyUpdateRejectsNegativeSize(t *testing.T) {
	product := &models.Product{}
	negative := decimal.RequireFromString("-1")

	err := applyUpdate(product, UpdateInput{SizeValue: &negative})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
