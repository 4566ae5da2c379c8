package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v half away from zero to two decimal places. It is the only
// rounding step in the package and is applied when a model is presented.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// LineView is the presentation form of a LineBreakdown.
type LineView struct {
	LineNo               int     `json:"line_no"`
	Description          string  `json:"description"`
	Quantity             float64 `json:"quantity"`
	Unit                 string  `json:"unit,omitempty"`
	Category             string  `json:"category,omitempty"`
	RiskFactor           float64 `json:"risk_factor"`
	UnitCost             float64 `json:"unit_cost"`
	RiskAdjustedUnitCost float64 `json:"risk_adjusted_unit_cost"`
	DirectCost           float64 `json:"direct_cost"`
	Notes                string  `json:"notes,omitempty"`
}

// TotalsView is the presentation form of the tender-level amounts.
type TotalsView struct {
	CurrencySymbol       string  `json:"currency_symbol"`
	TotalDirectCost      float64 `json:"total_direct_cost"`
	OverheadPct          float64 `json:"overhead_pct"`
	OverheadAmount       float64 `json:"overhead_amount"`
	ContingencyPct       float64 `json:"contingency_pct"`
	ContingencyAmount    float64 `json:"contingency_amount"`
	SubtotalBeforeProfit float64 `json:"subtotal_before_profit"`
	ProfitMarginPct      float64 `json:"profit_margin_pct"`
	ProfitAmount         float64 `json:"profit_amount"`
	SubtotalBeforeTax    float64 `json:"subtotal_before_tax"`
	TaxRatePct           float64 `json:"tax_rate_pct"`
	TaxAmount            float64 `json:"tax_amount"`
	GrandTotal           float64 `json:"grand_total"`
}

// ModelView is the JSON-shaped breakdown handed to the tool layer and to
// report rendering.
type ModelView struct {
	Strategy  Strategy   `json:"strategy,omitempty"`
	Inputs    Parameters `json:"inputs"`
	LineItems []LineView `json:"line_items"`
	Totals    TotalsView `json:"totals"`
}

// View rounds every amount of m for presentation.
func (m Model) View() ModelView {
	lines := make([]LineView, len(m.LineItems))
	for i, l := range m.LineItems {
		lines[i] = LineView{
			LineNo:               l.LineNo,
			Description:          l.Item.Description,
			Quantity:             l.Item.Quantity,
			Unit:                 l.Item.Unit,
			Category:             l.Item.Category,
			RiskFactor:           l.Item.RiskFactor,
			UnitCost:             Round(l.Item.UnitCost),
			RiskAdjustedUnitCost: Round(l.RiskAdjustedUnitCost),
			DirectCost:           Round(l.DirectCost),
			Notes:                l.Item.Notes,
		}
	}

	p := m.Parameters
	return ModelView{
		Inputs:    p,
		LineItems: lines,
		Totals: TotalsView{
			CurrencySymbol:       p.CurrencySymbol,
			TotalDirectCost:      Round(m.TotalDirectCost),
			OverheadPct:          p.OverheadPct,
			OverheadAmount:       Round(m.OverheadAmount),
			ContingencyPct:       p.ContingencyPct,
			ContingencyAmount:    Round(m.ContingencyAmount),
			SubtotalBeforeProfit: Round(m.SubtotalBeforeProfit),
			ProfitMarginPct:      p.ProfitMarginPct,
			ProfitAmount:         Round(m.ProfitAmount),
			SubtotalBeforeTax:    Round(m.SubtotalBeforeTax),
			TaxRatePct:           p.TaxRatePct,
			TaxAmount:            Round(m.TaxAmount),
			GrandTotal:           Round(m.GrandTotal),
		},
	}
}
