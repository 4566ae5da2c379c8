package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Pricing"

// moneyFormat is an Excel custom number format for two-decimal amounts.
const moneyFormat = `#,##0.00`

// XLSX exports the line table and the totals waterfall as a workbook. Amounts
// are written as numbers so the sheet stays usable for further analysis.
func XLSX(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 44, 10, 10, 14, 10, 16, 18}
	for i, c := range columns {
		if err := f.SetColWidth(xlsxSheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	customMoney := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customMoney, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}
	totalLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create total label style: %w", err)
	}
	totalValueStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &customMoney})
	if err != nil {
		return nil, fmt.Errorf("create total value style: %w", err)
	}

	set := func(cell string, v any) {
		if s, ok := v.(string); ok {
			v = sanitizeExcelCell(s)
		}
		_ = f.SetCellValue(xlsxSheet, cell, v)
	}

	if err := f.MergeCell(xlsxSheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	set("A1", d.Title())
	_ = f.SetCellStyle(xlsxSheet, "A1", lastCol+"1", titleStyle)
	set("A2", d.CompanyDisplayName())
	if d.Tender.TenderReference != "" {
		set("A3", "Ref: "+d.Tender.TenderReference)
	}
	set("E2", "Basis: "+d.StrategyLabel())
	set("E3", "Currency: "+d.Currency())

	headers := []string{"#", "Description", "Qty", "Unit", "Category", "Risk", "Unit Cost", "Line Total"}
	for i, h := range headers {
		set(fmt.Sprintf("%s5", columns[i]), h)
	}
	_ = f.SetCellStyle(xlsxSheet, "A5", lastCol+"5", headerStyle)

	row := 6
	for _, l := range d.Model.LineItems {
		r := fmt.Sprint(row)
		set("A"+r, l.LineNo)
		set("B"+r, l.Description)
		set("C"+r, l.Quantity)
		set("D"+r, l.Unit)
		set("E"+r, l.Category)
		set("F"+r, l.RiskFactor)
		set("G"+r, l.RiskAdjustedUnitCost)
		set("H"+r, l.DirectCost)
		_ = f.SetCellStyle(xlsxSheet, "A"+r, "F"+r, cellStyle)
		_ = f.SetCellStyle(xlsxSheet, "G"+r, "H"+r, moneyStyle)
		row++
	}

	row++
	t := d.Model.Totals
	totals := []struct {
		label string
		value float64
	}{
		{"Direct cost subtotal", t.TotalDirectCost},
		{"Overheads (" + FormatPct(t.OverheadPct) + ")", t.OverheadAmount},
		{"Contingency (" + FormatPct(t.ContingencyPct) + ")", t.ContingencyAmount},
		{"Subtotal before profit", t.SubtotalBeforeProfit},
		{"Profit margin (" + FormatPct(t.ProfitMarginPct) + ")", t.ProfitAmount},
		{"Total excl. tax", t.SubtotalBeforeTax},
		{"Tax (" + FormatPct(t.TaxRatePct) + ")", t.TaxAmount},
		{"Total incl. tax", t.GrandTotal},
	}
	for _, tr := range totals {
		r := fmt.Sprint(row)
		set("G"+r, tr.label)
		set("H"+r, tr.value)
		_ = f.SetCellStyle(xlsxSheet, "G"+r, "G"+r, totalLabelStyle)
		_ = f.SetCellStyle(xlsxSheet, "H"+r, "H"+r, totalValueStyle)
		row++
	}

	row++
	for _, q := range d.Qualifications() {
		r := fmt.Sprint(row)
		if err := f.MergeCell(xlsxSheet, "A"+r, lastCol+r); err != nil {
			return nil, fmt.Errorf("merge notes: %w", err)
		}
		set("A"+r, q)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx report: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes a quote to text that Excel would otherwise
// evaluate as a formula.
func sanitizeExcelCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#9CA3AF", Style: 1}
	}
	return borders
}
