package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/tenderpricing/internal/db"
	"github.com/Simplici0/tenderpricing/internal/migrations"
	"github.com/Simplici0/tenderpricing/internal/pricing"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := openMigrated(t)
	ctx := context.Background()
	cfg := Config{Defaults: pricing.DefaultParameters()}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 4 {
				t.Fatalf("expected 4 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM strategy_presets`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM strategy_presets WHERE strategy = ?`, "premium", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM pricing_defaults WHERE id = 1`, nil, 1)
}

func TestRunKeepsEditedRows(t *testing.T) {
	database := openMigrated(t)
	ctx := context.Background()

	if _, err := Run(ctx, database, Config{Defaults: pricing.DefaultParameters()}); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE pricing_defaults SET tax_rate_pct = 7 WHERE id = 1`); err != nil {
		t.Fatalf("edit defaults: %v", err)
	}

	other := pricing.DefaultParameters()
	other.TaxRatePct = 99
	if _, err := Run(ctx, database, Config{Defaults: other}); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var tax float64
	if err := database.QueryRow(`SELECT tax_rate_pct FROM pricing_defaults WHERE id = 1`).Scan(&tax); err != nil {
		t.Fatalf("query tax: %v", err)
	}
	if tax != 7 {
		t.Fatalf("tax_rate_pct = %v, want 7", tax)
	}
}

func TestRunRejectsInvalidDefaults(t *testing.T) {
	database := openMigrated(t)

	bad := pricing.DefaultParameters()
	bad.OverheadPct = -1
	if _, err := Run(context.Background(), database, Config{Defaults: bad}); err == nil {
		t.Fatalf("expected error for negative overhead")
	}
	assertCount(t, database, `SELECT COUNT(*) FROM strategy_presets`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
