package apoiado

import (
	"testing"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

func TestApplyUpdateTrimsName(t *testing.T) {
	apoiado := &models.Apoiado{Name: "old"}
	name := "  Maria Silva "

	if err := applyUpdate(apoiado, UpdateInput{Name: &name}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if apoiado.Name != "Maria Silva" {
		t.Fatalf("expected trimmed name, got %q", apoiado.Name)
	}
}

func TestApplyUpdateRejectsEmptyName(t *testing.T) {
	apoiado := &models.Apoiado{Name: "kept"}
	blank := "   "

	err := applyUpdate(apoiado, UpdateInput{Name: &blank})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apoiado.Name != "kept" {
		t.Fatalf("expected name untouched, got %q", apoiado.Name)
	}
}

func TestApplyUpdateRejectsZeroHousehold(t *testing.T) {
	apoiado := &models.Apoiado{HouseholdSize: 3}
	zero := 0

	err := applyUpdate(apoiado, UpdateInput{HouseholdSize: &zero})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apoiado.HouseholdSize != 3 {
		t.Fatalf("expected household size untouched, got %d", apoiado.HouseholdSize)
	}
}
