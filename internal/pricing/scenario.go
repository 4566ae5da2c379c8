package pricing

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

// Strategy names a fixed pricing posture.
type Strategy string

const (
	StrategyLowCost  Strategy = "low_cost"
	StrategyBalanced Strategy = "balanced"
	StrategyPremium  Strategy = "premium"
)

// Strategies lists every preset in the order used when a comparison is
// requested without an explicit strategy list.
var Strategies = []Strategy{StrategyLowCost, StrategyBalanced, StrategyPremium}

// ParseStrategy maps a name onto a known Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyLowCost, StrategyBalanced, StrategyPremium:
		return s, nil
	}
	return "", &UnknownStrategyError{Strategy: name}
}

// Preset scales the base percentages for one strategy. Tax and currency are
// never changed by a preset.
type Preset struct {
	OverheadFactor    float64 `json:"overhead_factor"`
	ContingencyFactor float64 `json:"contingency_factor"`
	ProfitFactor      float64 `json:"profit_factor"`
}

// Apply returns base with the preset factors applied.
func (p Preset) Apply(base Parameters) Parameters {
	out := base
	out.OverheadPct = base.OverheadPct * p.OverheadFactor
	out.ContingencyPct = base.ContingencyPct * p.ContingencyFactor
	out.ProfitMarginPct = base.ProfitMarginPct * p.ProfitFactor
	return out
}

// Validate checks that factors are finite and non-negative.
func (p Preset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OverheadFactor, nonNegative...),
		validation.Field(&p.ContingencyFactor, nonNegative...),
		validation.Field(&p.ProfitFactor, nonNegative...),
	)
}

// PresetTable maps each strategy to its preset.
type PresetTable map[Strategy]Preset

// DefaultPresets returns the built-in preset table.
func DefaultPresets() PresetTable {
	return PresetTable{
		StrategyLowCost:  {OverheadFactor: 0.80, ContingencyFactor: 1.00, ProfitFactor: 0.50},
		StrategyBalanced: {OverheadFactor: 1.00, ContingencyFactor: 1.00, ProfitFactor: 1.00},
		StrategyPremium:  {OverheadFactor: 1.00, ContingencyFactor: 1.50, ProfitFactor: 1.25},
	}
}

// Validate requires a valid preset for every strategy.
func (t PresetTable) Validate() error {
	for _, s := range Strategies {
		p, ok := t[s]
		if !ok {
			return paramError("presets."+string(s), "preset is missing")
		}
		if err := ValidatePreset(s, p); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePreset checks a single preset and reports the offending factor as
// presets.<strategy>.<field>.
func ValidatePreset(s Strategy, p Preset) error {
	err := firstFieldError(-1, p.Validate(), "overhead_factor", "contingency_factor", "profit_factor")
	if ve, ok := err.(*ValidationError); ok {
		ve.Field = "presets." + string(s) + "." + ve.Field
	}
	return err
}

// Effective returns the parameters a strategy prices with.
func (t PresetTable) Effective(s Strategy, base Parameters) (Parameters, error) {
	p, ok := t[s]
	if !ok {
		return Parameters{}, &UnknownStrategyError{Strategy: string(s)}
	}
	return p.Apply(base), nil
}

// ScenarioResult is one strategy's model.
type ScenarioResult struct {
	Strategy Strategy
	Model    Model
}

// ComparisonRow is the headline of one scenario.
type ComparisonRow struct {
	Strategy          Strategy `json:"strategy"`
	TotalDirectCost   float64  `json:"total_direct_cost"`
	OverheadAmount    float64  `json:"overhead_amount"`
	ContingencyAmount float64  `json:"contingency_amount"`
	ProfitAmount      float64  `json:"profit_amount"`
	SubtotalBeforeTax float64  `json:"subtotal_before_tax"`
	TaxAmount         float64  `json:"tax_amount"`
	GrandTotal        float64  `json:"grand_total"`
}

func rowFor(r ScenarioResult) ComparisonRow {
	m := r.Model
	return ComparisonRow{
		Strategy:          r.Strategy,
		TotalDirectCost:   m.TotalDirectCost,
		OverheadAmount:    m.OverheadAmount,
		ContingencyAmount: m.ContingencyAmount,
		ProfitAmount:      m.ProfitAmount,
		SubtotalBeforeTax: m.SubtotalBeforeTax,
		TaxAmount:         m.TaxAmount,
		GrandTotal:        m.GrandTotal,
	}
}

// Comparison is the outcome of running several strategies over one item list.
// Runs and Rows follow the requested order and keep duplicates; Scenarios is
// keyed by strategy and holds the last run for a repeated name.
type Comparison struct {
	CurrencySymbol string
	Runs           []ScenarioResult
	Scenarios      map[Strategy]Model
	Rows           []ComparisonRow
}

// Comparator runs the engine once per requested strategy.
type Comparator struct {
	Presets PresetTable
	// Parallel evaluates strategies concurrently. Output order is unaffected.
	Parallel bool
}

// Compare runs strategies over items using the built-in presets.
func Compare(items []Item, base Parameters, strategies []string) (Comparison, error) {
	return Comparator{Presets: DefaultPresets()}.Compare(items, base, strategies)
}

// Compare validates the whole request before pricing anything: an unknown
// strategy name or an invalid item or parameter fails the call with no
// partial output. An empty strategy list compares every preset.
func (c Comparator) Compare(items []Item, base Parameters, strategies []string) (Comparison, error) {
	presets := c.Presets
	if presets == nil {
		presets = DefaultPresets()
	}
	if err := presets.Validate(); err != nil {
		return Comparison{}, err
	}

	plan := make([]Strategy, 0, len(strategies))
	for _, name := range strategies {
		s, err := ParseStrategy(name)
		if err != nil {
			return Comparison{}, err
		}
		plan = append(plan, s)
	}
	if len(plan) == 0 {
		plan = append(plan, Strategies...)
	}

	if err := Validate(items, base); err != nil {
		return Comparison{}, err
	}
	effective := make([]Parameters, len(plan))
	for i, s := range plan {
		params, err := presets.Effective(s, base)
		if err != nil {
			return Comparison{}, err
		}
		if err := params.validate(); err != nil {
			return Comparison{}, fmt.Errorf("strategy %s: %w", s, err)
		}
		effective[i] = params
	}

	runs := make([]ScenarioResult, len(plan))
	errs := make([]error, len(plan))
	run := func(i int) {
		m, err := compute(items, effective[i])
		if err != nil {
			errs[i] = fmt.Errorf("strategy %s: %w", plan[i], err)
			return
		}
		runs[i] = ScenarioResult{Strategy: plan[i], Model: m}
	}
	if c.Parallel {
		var g errgroup.Group
		for i := range plan {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range plan {
			run(i)
		}
	}
	// First failure in call order, independent of scheduling.
	for _, err := range errs {
		if err != nil {
			return Comparison{}, err
		}
	}

	out := Comparison{
		CurrencySymbol: base.CurrencySymbol,
		Runs:           runs,
		Scenarios:      make(map[Strategy]Model, len(runs)),
		Rows:           make([]ComparisonRow, len(runs)),
	}
	for i, r := range runs {
		out.Scenarios[r.Strategy] = r.Model
		out.Rows[i] = rowFor(r)
	}
	return out, nil
}

// ComparisonSummaryView is the rounded headline table.
type ComparisonSummaryView struct {
	CurrencySymbol string          `json:"currency_symbol"`
	ByStrategy     []ComparisonRow `json:"by_strategy"`
}

// ComparisonView is the JSON shape returned to tool callers.
type ComparisonView struct {
	Scenarios  map[Strategy]ModelView `json:"scenarios"`
	Comparison ComparisonSummaryView  `json:"comparison"`
}

// View rounds every amount of c for presentation.
func (c Comparison) View() ComparisonView {
	scenarios := make(map[Strategy]ModelView, len(c.Scenarios))
	for s, m := range c.Scenarios {
		v := m.View()
		v.Strategy = s
		scenarios[s] = v
	}

	rows := make([]ComparisonRow, len(c.Rows))
	for i, r := range c.Rows {
		rows[i] = ComparisonRow{
			Strategy:          r.Strategy,
			TotalDirectCost:   Round(r.TotalDirectCost),
			OverheadAmount:    Round(r.OverheadAmount),
			ContingencyAmount: Round(r.ContingencyAmount),
			ProfitAmount:      Round(r.ProfitAmount),
			SubtotalBeforeTax: Round(r.SubtotalBeforeTax),
			TaxAmount:         Round(r.TaxAmount),
			GrandTotal:        Round(r.GrandTotal),
		}
	}

	return ComparisonView{
		Scenarios: scenarios,
		Comparison: ComparisonSummaryView{
			CurrencySymbol: c.CurrencySymbol,
			ByStrategy:     rows,
		},
	}
}
