package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lojasocial-app/lojasocial-backend/pkg/migrate"
)

func TestBasketsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_baskets_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no baskets migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS assistance_requests",
		"CREATE TABLE IF NOT EXISTS baskets",
		"CREATE TABLE IF NOT EXISTS basket_items",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_basket_items_basket_product",
		"CREATE INDEX IF NOT EXISTS idx_baskets_apoiado_status",
		"fault_count      INTEGER NOT NULL DEFAULT 0",
		"recurrence_days  INTEGER NOT NULL DEFAULT 30",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no products migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"size_value    NUMERIC(10,3) NOT NULL DEFAULT 0",
		"CREATE INDEX IF NOT EXISTS idx_products_status",
		"CREATE INDEX IF NOT EXISTS idx_products_basket_id",
		"CREATE INDEX IF NOT EXISTS idx_products_expiry_date",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationDedupesPendingEventsOnly(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox_events_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	start := strings.Index(content, "ux_outbox_events_event_aggregate")
	if start < 0 {
		t.Fatal("missing dedupe index")
	}
	// the guard must only hold rows the publisher has not drained yet,
	// otherwise a basket could never be flagged overdue twice
	if !strings.Contains(content[start:], "published_at IS NULL") {
		t.Error("dedupe index must be partial on unpublished rows")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) < 4 {
		t.Fatalf("expected at least 4 migrations, got %d", len(matches))
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
