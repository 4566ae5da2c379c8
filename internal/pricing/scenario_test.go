package pricing

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sampleItems() []Item {
	return []Item{{Description: "Item A", Quantity: 10, UnitCost: 5, RiskFactor: 1.1}}
}

func TestCompare_DefaultStrategies(t *testing.T) {
	c, err := Compare(sampleItems(), DefaultParameters(), nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(c.Rows) != 3 || len(c.Scenarios) != 3 {
		t.Fatalf("expected 3 rows and scenarios, got %d rows %d scenarios", len(c.Rows), len(c.Scenarios))
	}
	for i, want := range Strategies {
		if c.Rows[i].Strategy != want {
			t.Fatalf("row %d strategy = %s, want %s", i, c.Rows[i].Strategy, want)
		}
	}

	nearlyEqual(t, "low_cost grand total", c.Scenarios[StrategyLowCost].GrandTotal, 81.40275)
	nearlyEqual(t, "balanced grand total", c.Scenarios[StrategyBalanced].GrandTotal, 91.08)
	nearlyEqual(t, "premium grand total", c.Scenarios[StrategyPremium].GrandTotal, 96.8515625)
}

func TestCompare_PresetsOnlyTouchOverheadContingencyProfit(t *testing.T) {
	base := DefaultParameters()
	c, err := Compare(sampleItems(), base, []string{"low_cost", "premium"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	low := c.Scenarios[StrategyLowCost].Parameters
	nearlyEqual(t, "low overhead", low.OverheadPct, 12)
	nearlyEqual(t, "low contingency", low.ContingencyPct, 5)
	nearlyEqual(t, "low profit", low.ProfitMarginPct, 10)

	prem := c.Scenarios[StrategyPremium].Parameters
	nearlyEqual(t, "premium overhead", prem.OverheadPct, 15)
	nearlyEqual(t, "premium contingency", prem.ContingencyPct, 7.5)
	nearlyEqual(t, "premium profit", prem.ProfitMarginPct, 25)

	for _, p := range []Parameters{low, prem} {
		if p.TaxRatePct != base.TaxRatePct || p.CurrencySymbol != base.CurrencySymbol {
			t.Fatalf("tax or currency changed by preset: %+v", p)
		}
	}
}

func TestCompare_DirectCostIsSharedAcrossStrategies(t *testing.T) {
	c, err := Compare(sampleItems(), DefaultParameters(), nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	for _, r := range c.Rows {
		nearlyEqual(t, string(r.Strategy)+" direct cost", r.TotalDirectCost, 55)
	}
}

func TestCompare_DuplicatesKeepRowsCollapseScenarios(t *testing.T) {
	c, err := Compare(sampleItems(), DefaultParameters(), []string{"premium", "low_cost", "premium"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(c.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(c.Rows))
	}
	got := []Strategy{c.Rows[0].Strategy, c.Rows[1].Strategy, c.Rows[2].Strategy}
	want := []Strategy{StrategyPremium, StrategyLowCost, StrategyPremium}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("row order = %v, want %v", got, want)
	}
	if len(c.Scenarios) != 2 {
		t.Fatalf("expected 2 scenario keys, got %d", len(c.Scenarios))
	}
	if len(c.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(c.Runs))
	}
}

func TestCompare_UnknownStrategyFailsWholeCall(t *testing.T) {
	c, err := Compare(sampleItems(), DefaultParameters(), []string{"balanced", "exotic"})

	var use *UnknownStrategyError
	if !errors.As(err, &use) {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}
	if use.Strategy != "exotic" {
		t.Fatalf("strategy = %q, want exotic", use.Strategy)
	}
	if len(c.Rows) != 0 || c.Scenarios != nil {
		t.Fatalf("expected no partial output, got %+v", c)
	}
}

func TestCompare_StrategyNamesAreCaseSensitive(t *testing.T) {
	_, err := Compare(sampleItems(), DefaultParameters(), []string{"Balanced"})
	var use *UnknownStrategyError
	if !errors.As(err, &use) {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}
}

func TestCompare_InvalidItemFailsWholeCall(t *testing.T) {
	items := append(sampleItems(), Item{Description: "bad", Quantity: -2, UnitCost: 1, RiskFactor: 1})

	_, err := Compare(items, DefaultParameters(), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Index != 1 || ve.Field != "quantity" {
		t.Fatalf("got index=%d field=%q", ve.Index, ve.Field)
	}
}

func TestCompare_EmptyItems(t *testing.T) {
	c, err := Compare(nil, DefaultParameters(), nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	for _, r := range c.Rows {
		if r.GrandTotal != 0 {
			t.Fatalf("%s grand total = %v, want 0", r.Strategy, r.GrandTotal)
		}
	}
}

func TestComparator_ParallelMatchesSequential(t *testing.T) {
	items := []Item{
		NewItem("concrete", 12, 1450),
		{Description: "rebar", Quantity: 3.5, UnitCost: 18200, RiskFactor: 1.05},
		{Description: "labour", Quantity: 160, UnitCost: 210, RiskFactor: 1.1},
	}
	strategies := []string{"premium", "balanced", "low_cost", "balanced", "premium"}

	seq, err := Comparator{Presets: DefaultPresets()}.Compare(items, DefaultParameters(), strategies)
	if err != nil {
		t.Fatalf("sequential Compare: %v", err)
	}
	par, err := Comparator{Presets: DefaultPresets(), Parallel: true}.Compare(items, DefaultParameters(), strategies)
	if err != nil {
		t.Fatalf("parallel Compare: %v", err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel result differs from sequential")
	}
}

func TestComparator_CustomPresets(t *testing.T) {
	presets := DefaultPresets()
	presets[StrategyBalanced] = Preset{OverheadFactor: 2, ContingencyFactor: 0, ProfitFactor: 1}

	c, err := Comparator{Presets: presets}.Compare(sampleItems(), DefaultParameters(), []string{"balanced"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	p := c.Scenarios[StrategyBalanced].Parameters
	nearlyEqual(t, "overhead", p.OverheadPct, 30)
	nearlyEqual(t, "contingency", p.ContingencyPct, 0)
}

func TestPresetTable_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(PresetTable)
		wantField string
	}{
		{"missing preset", func(p PresetTable) { delete(p, StrategyPremium) }, "presets.premium"},
		{"negative factor", func(p PresetTable) {
			p[StrategyLowCost] = Preset{OverheadFactor: 1, ContingencyFactor: -1, ProfitFactor: 1}
		}, "presets.low_cost.contingency_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presets := DefaultPresets()
			tt.mutate(presets)

			var ve *ValidationError
			if err := presets.Validate(); !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}

	if err := DefaultPresets().Validate(); err != nil {
		t.Fatalf("default presets invalid: %v", err)
	}
}

func TestComparison_View(t *testing.T) {
	c, err := Compare(sampleItems(), DefaultParameters(), []string{"premium"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	v := c.View()
	if v.Comparison.CurrencySymbol != "R" {
		t.Fatalf("currency = %q", v.Comparison.CurrencySymbol)
	}
	row := v.Comparison.ByStrategy[0]
	if row.GrandTotal != 96.85 || row.TaxAmount != 12.63 || row.ProfitAmount != 16.84 {
		t.Fatalf("unexpected rounded row: %+v", row)
	}
	if v.Scenarios[StrategyPremium].Strategy != StrategyPremium {
		t.Fatalf("scenario view missing strategy tag")
	}
}

func TestComparator_OverflowFailsWholeCall(t *testing.T) {
	// Every preset pushes this past the float64 range; the error names the
	// first strategy in call order regardless of scheduling.
	items := []Item{NewItem("huge", 1, 1.3e308)}

	for _, parallel := range []bool{false, true} {
		c, err := Comparator{Presets: DefaultPresets(), Parallel: parallel}.Compare(items, DefaultParameters(), []string{"premium", "balanced"})
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "grand_total" || ve.Index != -1 {
			t.Fatalf("parallel=%v: err = %v, want grand_total ValidationError", parallel, err)
		}
		if !strings.Contains(err.Error(), "strategy premium") {
			t.Errorf("parallel=%v: err = %v, want premium named first", parallel, err)
		}
		if !reflect.DeepEqual(c, Comparison{}) {
			t.Errorf("parallel=%v: expected no partial output, got %+v", parallel, c)
		}
	}
}
