package report

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

// FormatMoney renders an amount with thousands separators and exactly two
// decimals, e.g. "R 1,234.57". The value is rounded half away from zero
// first so the text always agrees with the JSON views.
func FormatMoney(symbol string, v float64) string {
	n := humanize.FormatFloat("#,###.##", pricing.Round(v))
	if symbol == "" {
		return n
	}
	return symbol + " " + n
}

// FormatPct renders a percentage with one decimal, e.g. "15.0%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatQty prints whole quantities without decimals.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return humanize.FormatFloat("#,###.", qty)
	}
	return humanize.FormatFloat("#,###.##", qty)
}

// FormatFactor prints a risk factor as a multiplier, e.g. "×1.10".
func FormatFactor(f float64) string {
	return fmt.Sprintf("×%.2f", f)
}
