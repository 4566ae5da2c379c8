// Package store persists pricing configuration: the strategy preset table and
// the default pricing parameters. Tenders themselves are never stored.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

// ErrNotFound is returned when the defaults row has not been seeded.
var ErrNotFound = errors.New("store: not found")

// Store reads and writes configuration rows in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Presets returns every stored preset. Strategies without a row are filled in
// from the built-in table.
func (s *Store) Presets(ctx context.Context) (pricing.PresetTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, overhead_factor, contingency_factor, profit_factor
		FROM strategy_presets
	`)
	if err != nil {
		return nil, fmt.Errorf("query strategy_presets: %w", err)
	}
	defer rows.Close()

	table := pricing.DefaultPresets()
	for rows.Next() {
		var name string
		var p pricing.Preset
		if err := rows.Scan(&name, &p.OverheadFactor, &p.ContingencyFactor, &p.ProfitFactor); err != nil {
			return nil, fmt.Errorf("scan strategy preset: %w", err)
		}
		strategy, err := pricing.ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("stored preset: %w", err)
		}
		table[strategy] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy_presets: %w", err)
	}

	return table, nil
}

// SavePreset validates and upserts the preset for one strategy.
func (s *Store) SavePreset(ctx context.Context, strategy pricing.Strategy, p pricing.Preset) error {
	if _, err := pricing.ParseStrategy(string(strategy)); err != nil {
		return err
	}
	if err := pricing.ValidatePreset(strategy, p); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO strategy_presets (strategy, overhead_factor, contingency_factor, profit_factor)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(strategy) DO UPDATE SET
			overhead_factor = excluded.overhead_factor,
			contingency_factor = excluded.contingency_factor,
			profit_factor = excluded.profit_factor,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`, string(strategy), p.OverheadFactor, p.ContingencyFactor, p.ProfitFactor)
	if err != nil {
		return fmt.Errorf("upsert strategy preset %s: %w", strategy, err)
	}
	return nil
}

// Defaults returns the configured default parameters.
func (s *Store) Defaults(ctx context.Context) (pricing.Parameters, error) {
	var p pricing.Parameters
	err := s.db.QueryRowContext(ctx, `
		SELECT overhead_pct, contingency_pct, profit_margin_pct, tax_rate_pct, currency_symbol
		FROM pricing_defaults
		WHERE id = 1
	`).Scan(&p.OverheadPct, &p.ContingencyPct, &p.ProfitMarginPct, &p.TaxRatePct, &p.CurrencySymbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Parameters{}, ErrNotFound
		}
		return pricing.Parameters{}, fmt.Errorf("query pricing_defaults: %w", err)
	}
	return p, nil
}

// SaveDefaults validates and writes the singleton defaults row.
func (s *Store) SaveDefaults(ctx context.Context, p pricing.Parameters) error {
	if err := pricing.Validate(nil, p); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_defaults (id, overhead_pct, contingency_pct, profit_margin_pct, tax_rate_pct, currency_symbol)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			overhead_pct = excluded.overhead_pct,
			contingency_pct = excluded.contingency_pct,
			profit_margin_pct = excluded.profit_margin_pct,
			tax_rate_pct = excluded.tax_rate_pct,
			currency_symbol = excluded.currency_symbol,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`, p.OverheadPct, p.ContingencyPct, p.ProfitMarginPct, p.TaxRatePct, p.CurrencySymbol)
	if err != nil {
		return fmt.Errorf("upsert pricing_defaults: %w", err)
	}
	return nil
}
