package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Simplici0/tenderpricing/internal/db"
	"github.com/Simplici0/tenderpricing/internal/migrations"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/seed"
)

func newStore(t *testing.T, seeded bool) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if seeded {
		if _, err := seed.Run(ctx, database, seed.Config{Defaults: pricing.DefaultParameters()}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return New(database)
}

func TestPresets_FallsBackToBuiltins(t *testing.T) {
	s := newStore(t, false)

	got, err := s.Presets(context.Background())
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	want := pricing.DefaultPresets()
	for _, strategy := range pricing.Strategies {
		if got[strategy] != want[strategy] {
			t.Fatalf("%s = %+v, want %+v", strategy, got[strategy], want[strategy])
		}
	}
}

func TestSavePreset_RoundTrip(t *testing.T) {
	s := newStore(t, true)
	ctx := context.Background()

	updated := pricing.Preset{OverheadFactor: 0.7, ContingencyFactor: 0.9, ProfitFactor: 0.4}
	if err := s.SavePreset(ctx, pricing.StrategyLowCost, updated); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	got, err := s.Presets(ctx)
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if got[pricing.StrategyLowCost] != updated {
		t.Fatalf("low_cost = %+v, want %+v", got[pricing.StrategyLowCost], updated)
	}
	if got[pricing.StrategyPremium] != pricing.DefaultPresets()[pricing.StrategyPremium] {
		t.Fatalf("premium changed unexpectedly: %+v", got[pricing.StrategyPremium])
	}
}

func TestSavePreset_Rejects(t *testing.T) {
	s := newStore(t, true)
	ctx := context.Background()

	err := s.SavePreset(ctx, pricing.Strategy("exotic"), pricing.Preset{OverheadFactor: 1, ContingencyFactor: 1, ProfitFactor: 1})
	var use *pricing.UnknownStrategyError
	if !errors.As(err, &use) {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}

	err = s.SavePreset(ctx, pricing.StrategyPremium, pricing.Preset{OverheadFactor: 1, ContingencyFactor: 1, ProfitFactor: -2})
	var ve *pricing.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "presets.premium.profit_factor" {
		t.Fatalf("field = %q", ve.Field)
	}
}

func TestDefaults_NotSeeded(t *testing.T) {
	s := newStore(t, false)

	if _, err := s.Defaults(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveDefaults_RoundTrip(t *testing.T) {
	s := newStore(t, true)
	ctx := context.Background()

	want := pricing.Parameters{OverheadPct: 12, ContingencyPct: 3, ProfitMarginPct: 18, TaxRatePct: 16, CurrencySymbol: "$"}
	if err := s.SaveDefaults(ctx, want); err != nil {
		t.Fatalf("SaveDefaults: %v", err)
	}

	got, err := s.Defaults(ctx)
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if got != want {
		t.Fatalf("Defaults = %+v, want %+v", got, want)
	}
}

func TestSaveDefaults_RejectsNegative(t *testing.T) {
	s := newStore(t, true)

	err := s.SaveDefaults(context.Background(), pricing.Parameters{TaxRatePct: -1})
	var ve *pricing.ValidationError
	if !errors.As(err, &ve) || ve.Field != "tax_rate_pct" {
		t.Fatalf("expected tax_rate_pct ValidationError, got %v", err)
	}
}
