package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfMuted    = &props.Color{Red: 107, Green: 114, Blue: 128}
	pdfHeaderBg = &props.Color{Red: 31, Green: 41, Blue: 55}
	pdfWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfStripe   = &props.Color{Red: 243, Green: 244, Blue: 246}
)

// PDF renders the report as an A4 portrait document.
func PDF(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfMuted,
		}).
		Build()

	m := maroto.New(cfg)
	money := func(v float64) string { return FormatMoney(d.Currency(), v) }

	addPDFHeader(m, d)
	addPDFLineTable(m, d, money)
	addPDFTotals(m, d, money)
	addPDFNotes(m, d)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf report: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, d Document) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(text.New(d.CompanyDisplayName(), props.Text{Size: 15, Style: fontstyle.Bold})),
			col.New(4).Add(text.New("Tender Pricing Proposal", props.Text{Size: 9, Align: align.Right, Color: pdfMuted})),
		),
	)

	ref := ""
	if d.Tender.TenderReference != "" {
		ref = "Reference: " + d.Tender.TenderReference
	}
	m.AddRows(
		row.New(7).Add(
			col.New(8).Add(text.New(d.Title(), props.Text{Size: 11, Style: fontstyle.Bold})),
			col.New(4).Add(text.New(ref, props.Text{Size: 9, Align: align.Right, Color: pdfMuted})),
		),
		row.New(6).Add(
			col.New(8).Add(text.New("Basis: "+d.StrategyLabel()+"   Type: "+d.TenderTypeLabel(), props.Text{Size: 9, Color: pdfMuted})),
			col.New(4).Add(text.New(d.GeneratedAt.Format("2006-01-02"), props.Text{Size: 9, Align: align.Right, Color: pdfMuted})),
		),
		row.New(4),
	)
}

func addPDFLineTable(m core.Maroto, d Document, money func(float64) string) {
	header := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: pdfWhite}
	headerLeft := header
	headerLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: pdfHeaderBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", header)).WithStyle(headerCell),
			col.New(4).Add(text.New("Description", headerLeft)).WithStyle(headerCell),
			col.New(1).Add(text.New("Qty", header)).WithStyle(headerCell),
			col.New(1).Add(text.New("Unit", header)).WithStyle(headerCell),
			col.New(1).Add(text.New("Risk", header)).WithStyle(headerCell),
			col.New(2).Add(text.New("Unit Cost", header)).WithStyle(headerCell),
			col.New(2).Add(text.New("Line Total", header)).WithStyle(headerCell),
		),
	)

	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	for i, l := range d.Model.LineItems {
		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprint(l.LineNo), base)),
			col.New(4).Add(text.New(l.Description, left)),
			col.New(1).Add(text.New(FormatQty(l.Quantity), right)),
			col.New(1).Add(text.New(l.Unit, base)),
			col.New(1).Add(text.New(FormatFactor(l.RiskFactor), base)),
			col.New(2).Add(text.New(money(l.RiskAdjustedUnitCost), right)),
			col.New(2).Add(text.New(money(l.DirectCost), right)),
		}
		if i%2 == 1 {
			stripe := &props.Cell{BackgroundColor: pdfStripe}
			for j := range cols {
				cols[j] = cols[j].WithStyle(stripe)
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}
}

func addPDFTotals(m core.Maroto, d Document, money func(float64) string) {
	m.AddRows(row.New(6))

	t := d.Model.Totals
	label := props.Text{Size: 9, Align: align.Right, Color: pdfMuted}
	value := props.Text{Size: 9, Align: align.Right}
	strongLabel := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	strongValue := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		text   string
		amount float64
		strong bool
	}{
		{"Direct cost subtotal", t.TotalDirectCost, false},
		{"Overheads (" + FormatPct(t.OverheadPct) + ")", t.OverheadAmount, false},
		{"Contingency (" + FormatPct(t.ContingencyPct) + ")", t.ContingencyAmount, false},
		{"Subtotal before profit", t.SubtotalBeforeProfit, false},
		{"Profit margin (" + FormatPct(t.ProfitMarginPct) + ")", t.ProfitAmount, false},
		{"Total excl. tax", t.SubtotalBeforeTax, true},
		{"Tax (" + FormatPct(t.TaxRatePct) + ")", t.TaxAmount, false},
		{"Total incl. tax", t.GrandTotal, true},
	}
	for _, l := range lines {
		lp, vp := label, value
		if l.strong {
			lp, vp = strongLabel, strongValue
		}
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New(l.text, lp)),
				col.New(4).Add(text.New(money(l.amount), vp)),
			),
		)
	}
}

func addPDFNotes(m core.Maroto, d Document) {
	m.AddRows(
		row.New(8),
		row.New(6).Add(col.New(12).Add(text.New("NOTES & QUALIFICATIONS", props.Text{Size: 9, Style: fontstyle.Bold, Color: pdfMuted}))),
	)
	for _, q := range d.Qualifications() {
		m.AddRows(row.New(12).Add(col.New(12).Add(text.New(q, props.Text{Size: 8}))))
	}
}
