package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	// Defaults are written to pricing_defaults when the row is missing.
	Defaults pricing.Parameters
	// Presets are written per strategy when that strategy has no row. A nil
	// table means the built-in presets.
	Presets pricing.PresetTable
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way. Existing rows are
// never overwritten, so admin edits survive restarts.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	presets := cfg.Presets
	if presets == nil {
		presets = pricing.DefaultPresets()
	}
	if err := presets.Validate(); err != nil {
		return Stats{}, fmt.Errorf("seed presets: %w", err)
	}
	if err := pricing.Validate(nil, cfg.Defaults); err != nil {
		return Stats{}, fmt.Errorf("seed defaults: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, s := range pricing.Strategies {
		if err := ensurePreset(ctx, tx, s, presets[s], &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if err := ensureDefaults(ctx, tx, cfg.Defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePreset(ctx context.Context, tx *sql.Tx, s pricing.Strategy, p pricing.Preset, stats *Stats) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO strategy_presets (strategy, overhead_factor, contingency_factor, profit_factor)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(strategy) DO NOTHING
	`, string(s), p.OverheadFactor, p.ContingencyFactor, p.ProfitFactor)
	if err != nil {
		return fmt.Errorf("insert preset %s: %w", s, err)
	}
	return count(res, stats)
}

func ensureDefaults(ctx context.Context, tx *sql.Tx, p pricing.Parameters, stats *Stats) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO pricing_defaults (id, overhead_pct, contingency_pct, profit_margin_pct, tax_rate_pct, currency_symbol)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.OverheadPct, p.ContingencyPct, p.ProfitMarginPct, p.TaxRatePct, p.CurrencySymbol)
	if err != nil {
		return fmt.Errorf("insert pricing defaults singleton: %w", err)
	}
	return count(res, stats)
}

func count(res sql.Result, stats *Stats) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("seed rows affected: %w", err)
	}
	stats.Inserts += int(n)
	return nil
}
