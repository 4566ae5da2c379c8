package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/report"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	totalColor  = color.New(color.FgGreen, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errorLabel(kind string) string {
	switch kind {
	case tools.KindValidation:
		return errorColor.Sprint("validation error")
	case tools.KindUnknownStrategy:
		return errorColor.Sprint("unknown strategy")
	case tools.KindInvalidArguments:
		return errorColor.Sprint("invalid arguments")
	}
	return errorColor.Sprint("error")
}

func printModel(w io.Writer, v pricing.ModelView) {
	cur := v.Totals.CurrencySymbol
	money := func(f float64) string { return report.FormatMoney(cur, f) }

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	headerColor.Fprintln(tw, "#\tDescription\tQty\tRisk\tUnit Cost\tLine Total\t")
	for _, l := range v.LineItems {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			l.LineNo, l.Description, report.FormatQty(l.Quantity), report.FormatFactor(l.RiskFactor),
			money(l.RiskAdjustedUnitCost), money(l.DirectCost))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	t := v.Totals
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Direct cost subtotal\t%s\t\n", money(t.TotalDirectCost))
	fmt.Fprintf(tw, "Overheads (%s)\t%s\t\n", report.FormatPct(t.OverheadPct), money(t.OverheadAmount))
	fmt.Fprintf(tw, "Contingency (%s)\t%s\t\n", report.FormatPct(t.ContingencyPct), money(t.ContingencyAmount))
	fmt.Fprintf(tw, "Subtotal before profit\t%s\t\n", money(t.SubtotalBeforeProfit))
	fmt.Fprintf(tw, "Profit margin (%s)\t%s\t\n", report.FormatPct(t.ProfitMarginPct), money(t.ProfitAmount))
	fmt.Fprintf(tw, "Total excl. tax\t%s\t\n", money(t.SubtotalBeforeTax))
	fmt.Fprintf(tw, "Tax (%s)\t%s\t\n", report.FormatPct(t.TaxRatePct), money(t.TaxAmount))
	totalColor.Fprintf(tw, "Total incl. tax\t%s\t\n", money(t.GrandTotal))
	_ = tw.Flush()
}

func printComparison(w io.Writer, v pricing.ComparisonView) {
	cur := v.Comparison.CurrencySymbol
	money := func(f float64) string { return report.FormatMoney(cur, f) }

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	headerColor.Fprintln(tw, "Strategy\tDirect Cost\tOverheads\tContingency\tProfit\tExcl. Tax\tTax\tTotal\t")
	for _, r := range v.Comparison.ByStrategy {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Strategy, money(r.TotalDirectCost), money(r.OverheadAmount), money(r.ContingencyAmount),
			money(r.ProfitAmount), money(r.SubtotalBeforeTax), money(r.TaxAmount), money(r.GrandTotal))
	}
	_ = tw.Flush()
}
