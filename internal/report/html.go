package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"pct":    FormatPct,
			"qty":    FormatQty,
			"factor": FormatFactor,
			"riskClass": func(f float64) string {
				switch {
				case f > 1.05:
					return "risk-high"
				case f > 1.0:
					return "risk-medium"
				}
				return "risk-low"
			},
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

type htmlView struct {
	Document
	Money func(float64) string
}

// RenderHTML writes the styled, print-ready report. Every caller-supplied
// string is escaped by html/template.
func RenderHTML(w io.Writer, d Document) error {
	currency := d.Currency()
	view := htmlView{
		Document: d,
		Money:    func(v float64) string { return FormatMoney(currency, v) },
	}
	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// HTML renders the report to a string.
func HTML(d Document) (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
