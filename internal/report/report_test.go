package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

func sampleDocument(t *testing.T) Document {
	t.Helper()

	items := []pricing.Item{
		{Description: "Item A", Quantity: 10, UnitCost: 5, RiskFactor: 1.1, Unit: "ea", Notes: "supplied & fitted"},
		pricing.NewItem("Site establishment", 1, 1234.567),
	}
	m, err := pricing.Compute(items, pricing.DefaultParameters())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	view := m.View()
	view.Strategy = pricing.StrategyLowCost

	return NewDocument(
		TenderContext{TenderTitle: "Road Rehabilitation", TenderReference: "RFQ-2024/17", TenderType: "public"},
		CompanyContext{CompanyName: "Acme <Civils>", TradingName: "Acme", RegistrationNumber: "2019/123456/07", VATNumber: "4123456789", BBBEELevel: "2"},
		view,
		"",
	)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		symbol string
		in     float64
		want   string
	}{
		{"R", 1234.567, "R 1,234.57"},
		{"R", 91.08000000000001, "R 91.08"},
		{"R", 0, "R 0.00"},
		{"$", 1000000, "$ 1,000,000.00"},
		{"", 12.5, "12.50"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.symbol, tt.in); got != tt.want {
			t.Errorf("FormatMoney(%q, %v) = %q, want %q", tt.symbol, tt.in, got, tt.want)
		}
	}
}

func TestFormatQtyAndPct(t *testing.T) {
	if got := FormatQty(1250); got != "1,250" {
		t.Errorf("FormatQty(1250) = %q", got)
	}
	if got := FormatQty(2.5); got != "2.50" {
		t.Errorf("FormatQty(2.5) = %q", got)
	}
	if got := FormatPct(15); got != "15.0%" {
		t.Errorf("FormatPct(15) = %q", got)
	}
}

func TestDocumentDefaults(t *testing.T) {
	d := NewDocument(TenderContext{}, CompanyContext{TradingName: "Trader"}, pricing.ModelView{}, "  ")

	if d.ID == "" || d.GeneratedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", d)
	}
	if d.Title() != "Tender Pricing Proposal" {
		t.Errorf("Title() = %q", d.Title())
	}
	if d.CompanyDisplayName() != "Trader" {
		t.Errorf("CompanyDisplayName() = %q", d.CompanyDisplayName())
	}
	if d.TenderTypeLabel() != "Unknown" || d.StrategyLabel() != "Custom" {
		t.Errorf("labels = %q / %q", d.TenderTypeLabel(), d.StrategyLabel())
	}
	if len(d.Qualifications()) != len(DefaultQualifications) {
		t.Errorf("expected default qualifications for blank notes")
	}
}

func TestContextFromMap(t *testing.T) {
	c := CompanyFromMap(map[string]any{"company_name": "Acme", "bbbee_level": 2, "vat_number": nil})
	if c.CompanyName != "Acme" || c.BBBEELevel != "2" || c.VATNumber != "" {
		t.Fatalf("unexpected company: %+v", c)
	}

	tc := TenderFromMap(map[string]any{"tender_id": 42, "tender_type": "private"})
	if tc.TenderID != "42" || tc.TenderType != "private" {
		t.Fatalf("unexpected tender: %+v", tc)
	}
}

func TestRenderHTML(t *testing.T) {
	d := sampleDocument(t)

	out, err := HTML(d)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	for _, want := range []string{
		"Road Rehabilitation",
		"Reference: RFQ-2024/17",
		"Type: Public",
		"Low Cost",
		"Acme &lt;Civils&gt;",
		"supplied &amp; fitted",
		"B-BBEE Level 2",
		"Overheads: 15.0%",
		"R 55.00",
		"R 1,234.57",
		"Notes &amp; Qualifications",
		"normal working conditions",
		d.ID,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in html output", want)
		}
	}
	if strings.Contains(out, "Acme <Civils>") {
		t.Errorf("company name was not escaped")
	}
}

func TestRenderHTML_CustomNotesAndNoItems(t *testing.T) {
	m, err := pricing.Compute(nil, pricing.DefaultParameters())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	d := NewDocument(TenderContext{}, CompanyContext{}, m.View(), "Prices valid for 90 days.\n\nExcludes <script>.")

	out, err := HTML(d)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "No line items were supplied.") {
		t.Errorf("expected empty table message")
	}
	if !strings.Contains(out, "Prices valid for 90 days.") || !strings.Contains(out, "Excludes &lt;script&gt;.") {
		t.Errorf("custom notes missing or unescaped")
	}
	if strings.Contains(out, "normal working conditions") {
		t.Errorf("default qualifications should be replaced by notes")
	}
}

func TestXLSX(t *testing.T) {
	d := sampleDocument(t)
	d.Model.LineItems[0].Description = "=HYPERLINK(\"x\")"

	data, err := XLSX(d)
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(xlsxSheet, "A1"); got != "Road Rehabilitation" {
		t.Errorf("A1 = %q", got)
	}
	if got, _ := f.GetCellValue(xlsxSheet, "B6"); !strings.HasPrefix(got, "'=") {
		t.Errorf("formula text not neutralised: %q", got)
	}
	if got, _ := f.GetCellValue(xlsxSheet, "H6", excelize.Options{RawCellValue: true}); got != "55" {
		t.Errorf("H6 raw = %q, want 55", got)
	}
	if got, _ := f.GetCellValue(xlsxSheet, "G16"); got != "Total incl. tax" {
		t.Errorf("G16 = %q", got)
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleDocument(t))
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		t.Fatalf("result does not start with PDF header")
	}
}
