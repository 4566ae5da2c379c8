// Package analysis scans the free text of a pricing schedule or BOQ for
// commercial terms that affect how a tender should be priced.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// TenderType classifies the procuring entity.
type TenderType string

const (
	TenderPublic  TenderType = "public"
	TenderPrivate TenderType = "private"
	TenderUnknown TenderType = "unknown"
)

// ParseTenderType maps any value other than public or private to unknown.
func ParseTenderType(s string) TenderType {
	switch t := TenderType(strings.ToLower(strings.TrimSpace(s))); t {
	case TenderPublic, TenderPrivate:
		return t
	}
	return TenderUnknown
}

// Flags records which commercial terms the text mentions.
type Flags struct {
	FirmPrice       bool `json:"mentions_firm_price"`
	NonFirmPrice    bool `json:"mentions_non_firm_price"`
	Escalation      bool `json:"mentions_escalation"`
	VATInclusive    bool `json:"mentions_vat_inclusive"`
	VATExclusive    bool `json:"mentions_vat_exclusive"`
	ProvisionalSums bool `json:"mentions_provisional_sums"`
	PrimeCosts      bool `json:"mentions_prime_costs"`
	Dayworks        bool `json:"mentions_dayworks"`
	RateOnlyItems   bool `json:"mentions_rate_only_items"`
	LumpSum         bool `json:"mentions_lumpsum"`
	Discounts       bool `json:"mentions_discounts"`
}

// Result is the outcome of Analyze.
type Result struct {
	Summary               string `json:"summary"`
	Flags                 Flags  `json:"flags"`
	DetectedCurrency      string `json:"detected_currency,omitempty"`
	EstimatedNumericLines int    `json:"estimated_numeric_lines"`
}

var (
	reFirm        = regexp.MustCompile(`firm price`)
	reNonFirm     = regexp.MustCompile(`non[-\s]?firm`)
	reEscalation  = regexp.MustCompile(`escalat(e|ion)`)
	reVATIncl     = regexp.MustCompile(`vat\s*(inclusive|incl\b)`)
	reVATExcl     = regexp.MustCompile(`vat\s*(exclusive|excl\b)`)
	reProvisional = regexp.MustCompile(`provisional sum`)
	rePrimeCost   = regexp.MustCompile(`prime cost`)
	reDaywork     = regexp.MustCompile(`daywork`)
	reRateOnly    = regexp.MustCompile(`rate only`)
	reLumpSum     = regexp.MustCompile(`lump\s*sum`)
	reDiscount    = regexp.MustCompile(`discount`)

	reDigit = regexp.MustCompile(`\d`)

	// Checked in order; the first match wins.
	currencies = []struct {
		code string
		re   *regexp.Regexp
	}{
		{"ZAR", regexp.MustCompile(`\bzar\b|south african rand|\brand\b|(^|[\s(])r\s?\d`)},
		{"USD", regexp.MustCompile(`\busd\b|dollar|\$`)},
		{"EUR", regexp.MustCompile(`\beur\b|euro|€`)},
	}
)

// minNumericLineLen is the trimmed length a line must exceed to count as a
// priced line.
const minNumericLineLen = 10

// Analyze runs the keyword heuristics over text. It never fails; empty text
// yields an all-false result with zero numeric lines.
func Analyze(text string, tenderType TenderType) Result {
	lower := strings.ToLower(text)

	res := Result{
		Flags: Flags{
			FirmPrice:       reFirm.MatchString(lower),
			NonFirmPrice:    reNonFirm.MatchString(lower),
			Escalation:      reEscalation.MatchString(lower),
			VATInclusive:    reVATIncl.MatchString(lower),
			VATExclusive:    reVATExcl.MatchString(lower),
			ProvisionalSums: reProvisional.MatchString(lower),
			PrimeCosts:      rePrimeCost.MatchString(lower),
			Dayworks:        reDaywork.MatchString(lower),
			RateOnlyItems:   reRateOnly.MatchString(lower),
			LumpSum:         reLumpSum.MatchString(lower),
			Discounts:       reDiscount.MatchString(lower),
		},
		DetectedCurrency: detectCurrency(lower),
	}

	for _, line := range strings.Split(text, "\n") {
		if reDigit.MatchString(line) && len(strings.TrimSpace(line)) > minNumericLineLen {
			res.EstimatedNumericLines++
		}
	}

	res.Summary = summary(res.EstimatedNumericLines, tenderType)
	return res
}

func detectCurrency(lower string) string {
	for _, c := range currencies {
		if c.re.MatchString(lower) {
			return c.code
		}
	}
	return ""
}

func summary(lines int, tenderType TenderType) string {
	s := fmt.Sprintf("The pricing specification appears to describe approximately %d line items containing numeric values.", lines)
	switch tenderType {
	case TenderPublic:
		s += " The tender is flagged as PUBLIC: ensure compliance with PPPFA, MFMA / PFMA and any prescribed pricing schedules."
	case TenderPrivate:
		s += " The tender is flagged as PRIVATE: commercial flexibility may be higher but still ensure clear assumptions."
	}
	return s
}
