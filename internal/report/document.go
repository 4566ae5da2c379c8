// Package report renders a priced tender as HTML, XLSX or PDF.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

const (
	defaultTitle       = "Tender Pricing Proposal"
	defaultCompanyName = "Your Company"
)

// DefaultQualifications is printed when a report carries no notes of its own.
var DefaultQualifications = []string{
	"This pricing proposal is based on information available at the time of preparation. " +
		"It assumes normal working conditions, uninterrupted access to site, and that all " +
		"statutory requirements and third-party approvals are in place.",
	"Unless explicitly stated otherwise, prices are subject to final contract terms, scope " +
		"confirmation and any escalation provisions prescribed in the tender documentation.",
}

// TenderContext identifies the tender being priced.
type TenderContext struct {
	TenderID        string `json:"tender_id,omitempty"`
	TenderTitle     string `json:"tender_title,omitempty"`
	TenderReference string `json:"tender_reference,omitempty"`
	TenderType      string `json:"tender_type,omitempty"`
}

// CompanyContext identifies the bidder.
type CompanyContext struct {
	CompanyName        string `json:"company_name,omitempty"`
	TradingName        string `json:"trading_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	VATNumber          string `json:"vat_number,omitempty"`
	BBBEELevel         string `json:"bbbee_level,omitempty"`
	ContactPerson      string `json:"contact_person,omitempty"`
	ContactEmail       string `json:"contact_email,omitempty"`
	ContactPhone       string `json:"contact_phone,omitempty"`
	Address            string `json:"address,omitempty"`
}

// TenderFromMap reads a loosely typed tender context. Values of any scalar
// type are accepted.
func TenderFromMap(m map[string]any) TenderContext {
	return TenderContext{
		TenderID:        str(m, "tender_id"),
		TenderTitle:     str(m, "tender_title"),
		TenderReference: str(m, "tender_reference"),
		TenderType:      str(m, "tender_type"),
	}
}

// CompanyFromMap reads a loosely typed company context. A numeric
// bbbee_level such as 2 becomes "2".
func CompanyFromMap(m map[string]any) CompanyContext {
	return CompanyContext{
		CompanyName:        str(m, "company_name"),
		TradingName:        str(m, "trading_name"),
		RegistrationNumber: str(m, "registration_number"),
		VATNumber:          str(m, "vat_number"),
		BBBEELevel:         str(m, "bbbee_level"),
		ContactPerson:      str(m, "contact_person"),
		ContactEmail:       str(m, "contact_email"),
		ContactPhone:       str(m, "contact_phone"),
		Address:            str(m, "address"),
	}
}

func str(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Document is everything a renderer needs.
type Document struct {
	ID          string
	GeneratedAt time.Time
	Tender      TenderContext
	Company     CompanyContext
	Model       pricing.ModelView
	Notes       string
}

// NewDocument stamps a fresh report ID and generation time.
func NewDocument(tender TenderContext, company CompanyContext, model pricing.ModelView, notes string) Document {
	return Document{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Tender:      tender,
		Company:     company,
		Model:       model,
		Notes:       strings.TrimSpace(notes),
	}
}

// Title is the tender title or a generic heading.
func (d Document) Title() string {
	if d.Tender.TenderTitle != "" {
		return d.Tender.TenderTitle
	}
	return defaultTitle
}

// CompanyDisplayName prefers the registered name, then the trading name.
func (d Document) CompanyDisplayName() string {
	switch {
	case d.Company.CompanyName != "":
		return d.Company.CompanyName
	case d.Company.TradingName != "":
		return d.Company.TradingName
	}
	return defaultCompanyName
}

// TenderTypeLabel is the tender type in title case, "Unknown" when empty.
func (d Document) TenderTypeLabel() string {
	if d.Tender.TenderType == "" {
		return "Unknown"
	}
	return titleCase(d.Tender.TenderType)
}

// StrategyLabel is the pricing basis, e.g. "Low Cost".
func (d Document) StrategyLabel() string {
	if d.Model.Strategy == "" {
		return "Custom"
	}
	return titleCase(strings.ReplaceAll(string(d.Model.Strategy), "_", " "))
}

// Qualifications returns the notes split into paragraphs, or the default
// qualifications when there are none.
func (d Document) Qualifications() []string {
	if d.Notes == "" {
		return DefaultQualifications
	}
	var out []string
	for _, p := range strings.Split(d.Notes, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Currency is the symbol every amount is printed with.
func (d Document) Currency() string {
	if d.Model.Totals.CurrencySymbol != "" {
		return d.Model.Totals.CurrencySymbol
	}
	return d.Model.Inputs.CurrencySymbol
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
