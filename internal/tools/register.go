package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/report"
)

// Tool names.
const (
	NameEntrypoint = "pricing_entrypoint"
	NameBuildModel = "build_pricing_model"
	NameCompare    = "compare_pricing_scenarios"
	NameReportHTML = "generate_pricing_report_html"
)

var itemSchema = map[string]any{
	"type":     "object",
	"required": []string{"description", "quantity", "unit_cost"},
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
		"quantity":    map[string]any{"type": "number", "minimum": 0},
		"unit_cost":   map[string]any{"type": "number", "minimum": 0},
		"risk_factor": map[string]any{"type": "number", "minimum": 0, "default": pricing.DefaultRiskFactor},
		"risk_level":  map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
		"unit":        map[string]any{"type": "string"},
		"category":    map[string]any{"type": "string"},
		"notes":       map[string]any{"type": "string"},
	},
}

func rateProperties(defaults pricing.Parameters) map[string]any {
	pct := func(desc string, def float64) map[string]any {
		return map[string]any{"type": "number", "minimum": 0, "default": def, "description": desc}
	}
	return map[string]any{
		"overhead_pct":      pct("Overheads as a percentage of direct cost.", defaults.OverheadPct),
		"contingency_pct":   pct("Contingency as a percentage of direct cost.", defaults.ContingencyPct),
		"profit_margin_pct": pct("Profit as a percentage of the loaded cost.", defaults.ProfitMarginPct),
		"tax_rate_pct":      pct("Tax as a percentage of the total before tax.", defaults.TaxRatePct),
		"currency_symbol":   map[string]any{"type": "string", "default": defaults.CurrencySymbol},
	}
}

func strategyNames() []string {
	names := make([]string, len(pricing.Strategies))
	for i, s := range pricing.Strategies {
		names[i] = string(s)
	}
	return names
}

func withProps(base map[string]any, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// Register adds the four pricing tools to reg. defaults only feed the
// schema documentation; each call reads the live settings.
func Register(reg *Registry, svc *Service, defaults pricing.Parameters) error {
	defs := []struct {
		tool    Tool
		handler Handler
	}{
		{
			tool: Tool{
				Name:        NameEntrypoint,
				Description: "Check whether structured pricing requirements are available for a tender and analyse the pricing schedule text.",
				Parameters: map[string]any{
					"type":     "object",
					"required": []string{"tender_id"},
					"properties": map[string]any{
						"tender_id":                map[string]any{"type": "string"},
						"tender_title":             map[string]any{"type": "string"},
						"tender_reference":         map[string]any{"type": "string"},
						"tender_type":              map[string]any{"type": "string", "enum": []string{"public", "private", "unknown"}, "default": "unknown"},
						"pricing_requirements":     map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
						"parsed_pricing_spec_text": map[string]any{"type": "string"},
					},
				},
			},
			handler: svc.entrypointHandler,
		},
		{
			tool: Tool{
				Name:        NameBuildModel,
				Description: "Build a pricing model with overheads, contingency, profit and tax from structured pricing items.",
				Parameters: map[string]any{
					"type":     "object",
					"required": []string{"pricing_items"},
					"properties": withProps(rateProperties(defaults), map[string]any{
						"pricing_items": map[string]any{"type": "array", "items": itemSchema},
						"strategy":      map[string]any{"type": "string", "enum": strategyNames(), "default": string(pricing.StrategyBalanced)},
					}),
				},
			},
			handler: svc.buildModelHandler,
		},
		{
			tool: Tool{
				Name:        NameCompare,
				Description: "Run side-by-side low_cost, balanced and premium pricing scenarios over the same items.",
				Parameters: map[string]any{
					"type":     "object",
					"required": []string{"pricing_items"},
					"properties": withProps(rateProperties(defaults), map[string]any{
						"pricing_items": map[string]any{"type": "array", "items": itemSchema},
						"strategies": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string", "enum": strategyNames()},
						},
					}),
				},
			},
			handler: svc.compareHandler,
		},
		{
			tool: Tool{
				Name:        NameReportHTML,
				Description: "Render a styled HTML pricing report from a pricing model.",
				Parameters: map[string]any{
					"type":     "object",
					"required": []string{"pricing_model"},
					"properties": map[string]any{
						"tender_context":   map[string]any{"type": "object"},
						"company_context":  map[string]any{"type": "object"},
						"pricing_model":    map[string]any{"type": "object"},
						"additional_notes": map[string]any{"type": "string"},
					},
				},
			},
			handler: svc.reportHandler,
		},
	}

	for _, d := range defs {
		if err := reg.Register(d.tool, d.handler); err != nil {
			return err
		}
	}
	return nil
}

type modelArgs struct {
	PricingItems json.RawMessage `json:"pricing_items"`
	Strategy     string          `json:"strategy"`
}

// DecodeModelRequest reads build_pricing_model arguments.
func DecodeModelRequest(data []byte) (ModelRequest, error) {
	var args modelArgs
	if err := decodeArgs(data, &args); err != nil {
		return ModelRequest{}, err
	}
	items, err := pricing.DecodeItems(args.PricingItems)
	if err != nil {
		return ModelRequest{}, err
	}
	rates, err := DecodeRateArgs(data)
	if err != nil {
		return ModelRequest{}, err
	}
	return ModelRequest{Items: items, Rates: rates, Strategy: args.Strategy}, nil
}

type compareArgs struct {
	PricingItems json.RawMessage `json:"pricing_items"`
	Strategies   []string        `json:"strategies"`
}

// DecodeCompareRequest reads compare_pricing_scenarios arguments.
func DecodeCompareRequest(data []byte) (CompareRequest, error) {
	var args compareArgs
	if err := decodeArgs(data, &args); err != nil {
		return CompareRequest{}, err
	}
	items, err := pricing.DecodeItems(args.PricingItems)
	if err != nil {
		return CompareRequest{}, err
	}
	rates, err := DecodeRateArgs(data)
	if err != nil {
		return CompareRequest{}, err
	}
	return CompareRequest{Items: items, Rates: rates, Strategies: args.Strategies}, nil
}

// DecodeRateArgs reads the optional percentage and currency fields of a
// request object. A value of the wrong JSON type is a *pricing.ValidationError
// naming the field; absent or null fields stay nil.
func DecodeRateArgs(data []byte) (RateArgs, error) {
	var fields map[string]json.RawMessage
	if err := decodeArgs(data, &fields); err != nil {
		return RateArgs{}, err
	}

	var a RateArgs
	percentages := []struct {
		key string
		dst **float64
	}{
		{"overhead_pct", &a.OverheadPct},
		{"contingency_pct", &a.ContingencyPct},
		{"profit_margin_pct", &a.ProfitMarginPct},
		{"tax_rate_pct", &a.TaxRatePct},
	}
	for _, p := range percentages {
		raw, ok := rateField(fields, p.key)
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return RateArgs{}, &pricing.ValidationError{Index: -1, Field: p.key, Message: "must be a number"}
		}
		*p.dst = &v
	}

	if raw, ok := rateField(fields, "currency_symbol"); ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return RateArgs{}, &pricing.ValidationError{Index: -1, Field: "currency_symbol", Message: "must be a string"}
		}
		a.CurrencySymbol = &v
	}
	return a, nil
}

func rateField(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

type reportArgs struct {
	TenderContext   map[string]any     `json:"tender_context"`
	CompanyContext  map[string]any     `json:"company_context"`
	PricingModel    *pricing.ModelView `json:"pricing_model"`
	AdditionalNotes string             `json:"additional_notes"`
}

// DecodeReportRequest reads generate_pricing_report_html arguments. The
// context objects accept any scalar values.
func DecodeReportRequest(data []byte) (ReportRequest, error) {
	var args reportArgs
	if err := decodeArgs(data, &args); err != nil {
		return ReportRequest{}, err
	}
	if args.PricingModel == nil {
		return ReportRequest{}, &ArgumentError{Err: errors.New("pricing_model is required")}
	}
	return ReportRequest{
		Tender:  report.TenderFromMap(args.TenderContext),
		Company: report.CompanyFromMap(args.CompanyContext),
		Model:   *args.PricingModel,
		Notes:   args.AdditionalNotes,
	}, nil
}

// DecodeEntrypointRequest reads pricing_entrypoint arguments.
func DecodeEntrypointRequest(data []byte) (EntrypointRequest, error) {
	var req EntrypointRequest
	if err := decodeArgs(data, &req); err != nil {
		return EntrypointRequest{}, err
	}
	return req, nil
}

// handle turns a domain failure into an error Result. Only faults that are
// not the caller's doing are returned as errors.
func handle(v any, err error) (Result, error) {
	if err != nil {
		if IsClientError(err) {
			return ErrorResult(err), nil
		}
		return Result{}, err
	}
	return Result{Content: v}, nil
}

func (s *Service) entrypointHandler(ctx context.Context, args json.RawMessage) (Result, error) {
	req, err := DecodeEntrypointRequest(args)
	if err != nil {
		return handle(nil, err)
	}
	return handle(s.Entrypoint(ctx, req))
}

func (s *Service) buildModelHandler(ctx context.Context, args json.RawMessage) (Result, error) {
	req, err := DecodeModelRequest(args)
	if err != nil {
		s.Reject(ctx, NameBuildModel, err)
		return handle(nil, err)
	}
	return handle(s.BuildModel(ctx, req))
}

func (s *Service) compareHandler(ctx context.Context, args json.RawMessage) (Result, error) {
	req, err := DecodeCompareRequest(args)
	if err != nil {
		s.Reject(ctx, NameCompare, err)
		return handle(nil, err)
	}
	return handle(s.Compare(ctx, req))
}

func (s *Service) reportHandler(ctx context.Context, args json.RawMessage) (Result, error) {
	req, err := DecodeReportRequest(args)
	if err != nil {
		s.Reject(ctx, NameReportHTML, err)
		return handle(nil, err)
	}
	return handle(s.Report(ctx, req))
}
