package pricing

import "math"

// Item is one bid line as supplied by the caller.
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	RiskFactor  float64 `json:"risk_factor"`

	// Display-only fields carried through to reports.
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// NewItem returns an item with the neutral risk factor of 1.0.
func NewItem(description string, quantity, unitCost float64) Item {
	return Item{
		Description: description,
		Quantity:    quantity,
		UnitCost:    unitCost,
		RiskFactor:  DefaultRiskFactor,
	}
}

// DefaultRiskFactor applies when an item does not state its own risk factor.
const DefaultRiskFactor = 1.0

// Parameters holds the tender-level percentages applied once to the sum of
// direct costs. CurrencySymbol is display only.
type Parameters struct {
	OverheadPct     float64 `json:"overhead_pct"`
	ContingencyPct  float64 `json:"contingency_pct"`
	ProfitMarginPct float64 `json:"profit_margin_pct"`
	TaxRatePct      float64 `json:"tax_rate_pct"`
	CurrencySymbol  string  `json:"currency_symbol"`
}

// DefaultParameters returns the percentages used when a caller omits them.
func DefaultParameters() Parameters {
	return Parameters{
		OverheadPct:     15,
		ContingencyPct:  5,
		ProfitMarginPct: 20,
		TaxRatePct:      15,
		CurrencySymbol:  "R",
	}
}

// LineBreakdown is the derived cost of a single item.
type LineBreakdown struct {
	LineNo               int
	Item                 Item
	RiskAdjustedUnitCost float64
	DirectCost           float64
}

// Model is the full result of one pricing run. Amounts are unrounded.
type Model struct {
	LineItems  []LineBreakdown
	Parameters Parameters

	TotalDirectCost      float64
	OverheadAmount       float64
	ContingencyAmount    float64
	SubtotalBeforeProfit float64
	ProfitAmount         float64
	SubtotalBeforeTax    float64
	TaxAmount            float64
	GrandTotal           float64
}

// Compute prices items under params. Nothing is computed unless every item
// and parameter is valid.
//
// The waterfall order is fixed: direct cost, then overhead and contingency on
// direct cost, then profit on the loaded cost, then tax on everything before it.
func Compute(items []Item, params Parameters) (Model, error) {
	if err := Validate(items, params); err != nil {
		return Model{}, err
	}
	return compute(items, params)
}

func compute(items []Item, params Parameters) (Model, error) {
	lines := make([]LineBreakdown, len(items))
	totalDirectCost := 0.0
	for i, item := range items {
		riskAdjusted := item.UnitCost * item.RiskFactor
		directCost := riskAdjusted * item.Quantity

		lines[i] = LineBreakdown{
			LineNo:               i + 1,
			Item:                 item,
			RiskAdjustedUnitCost: riskAdjusted,
			DirectCost:           directCost,
		}
		totalDirectCost += directCost
	}

	overhead := totalDirectCost * (params.OverheadPct / 100.0)
	contingency := totalDirectCost * (params.ContingencyPct / 100.0)
	subtotalBeforeProfit := totalDirectCost + overhead + contingency

	profit := subtotalBeforeProfit * (params.ProfitMarginPct / 100.0)
	subtotalBeforeTax := subtotalBeforeProfit + profit

	tax := subtotalBeforeTax * (params.TaxRatePct / 100.0)

	m := Model{
		LineItems:            lines,
		Parameters:           params,
		TotalDirectCost:      totalDirectCost,
		OverheadAmount:       overhead,
		ContingencyAmount:    contingency,
		SubtotalBeforeProfit: subtotalBeforeProfit,
		ProfitAmount:         profit,
		SubtotalBeforeTax:    subtotalBeforeTax,
		TaxAmount:            tax,
		GrandTotal:           subtotalBeforeTax + tax,
	}
	if err := m.checkRange(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// checkRange rejects a model whose amounts left the float64 range. Finite
// inputs can still multiply past it.
func (m Model) checkRange() error {
	for i, l := range m.LineItems {
		if !isFinite(l.RiskAdjustedUnitCost) || !isFinite(l.DirectCost) {
			return &ValidationError{Index: i, Field: "direct_cost", Message: "exceeds the representable range"}
		}
	}
	totals := []float64{
		m.TotalDirectCost, m.OverheadAmount, m.ContingencyAmount, m.SubtotalBeforeProfit,
		m.ProfitAmount, m.SubtotalBeforeTax, m.TaxAmount, m.GrandTotal,
	}
	for _, v := range totals {
		if !isFinite(v) {
			return paramError("grand_total", "exceeds the representable range")
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
