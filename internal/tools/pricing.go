package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Simplici0/tenderpricing/internal/analysis"
	"github.com/Simplici0/tenderpricing/internal/observability"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/report"
)

// Entrypoint statuses.
const (
	StatusMissingSpec = "missing_pricing_spec"
	StatusReady       = "ready_for_pricing_model"
)

const missingSpecInstructions = `No structured pricing_requirements were provided.

Next steps:
1) Ask the user to upload the pricing schedule or Bill of Quantities (BOQ),
   or any annexure that contains the rates, quantities and units to be priced.
2) Parse the uploaded document into a structured list of line items, or
   upload it to POST /api/pricing/import as CSV or XLSX.
3) Call pricing_entrypoint again with pricing_requirements populated.`

const readyInstructions = "You may now call build_pricing_model to generate a detailed pricing table, " +
	"followed by generate_pricing_report_html to produce the styled pricing report. " +
	"compare_pricing_scenarios runs low_cost, balanced and premium what-if comparisons."

// Settings supplies the default parameters and preset table for each call.
type Settings interface {
	Defaults(ctx context.Context) (pricing.Parameters, error)
	Presets(ctx context.Context) (pricing.PresetTable, error)
}

// StaticSettings serves fixed values, for callers without a database.
type StaticSettings struct {
	Params pricing.Parameters
	Table  pricing.PresetTable
}

func (s StaticSettings) Defaults(context.Context) (pricing.Parameters, error) {
	return s.Params, nil
}

func (s StaticSettings) Presets(context.Context) (pricing.PresetTable, error) {
	if s.Table == nil {
		return pricing.DefaultPresets(), nil
	}
	return s.Table, nil
}

// Service implements the pricing tools on top of the engine.
type Service struct {
	settings Settings
	parallel bool
	observer observability.Observer
}

// NewService returns a Service. A nil observer discards events.
func NewService(settings Settings, parallel bool, observer observability.Observer) *Service {
	if observer == nil {
		observer = observability.Noop{}
	}
	return &Service{settings: settings, parallel: parallel, observer: observer}
}

// RateArgs are the optional tender-level percentages of a request. A nil
// field takes the configured default.
type RateArgs struct {
	OverheadPct     *float64 `json:"overhead_pct,omitempty"`
	ContingencyPct  *float64 `json:"contingency_pct,omitempty"`
	ProfitMarginPct *float64 `json:"profit_margin_pct,omitempty"`
	TaxRatePct      *float64 `json:"tax_rate_pct,omitempty"`
	CurrencySymbol  *string  `json:"currency_symbol,omitempty"`
}

// Over fills the fields set in a on top of base.
func (a RateArgs) Over(base pricing.Parameters) pricing.Parameters {
	if a.OverheadPct != nil {
		base.OverheadPct = *a.OverheadPct
	}
	if a.ContingencyPct != nil {
		base.ContingencyPct = *a.ContingencyPct
	}
	if a.ProfitMarginPct != nil {
		base.ProfitMarginPct = *a.ProfitMarginPct
	}
	if a.TaxRatePct != nil {
		base.TaxRatePct = *a.TaxRatePct
	}
	if a.CurrencySymbol != nil {
		base.CurrencySymbol = *a.CurrencySymbol
	}
	return base
}

// EntrypointRequest is the input of pricing_entrypoint.
type EntrypointRequest struct {
	TenderID              string           `json:"tender_id"`
	TenderTitle           string           `json:"tender_title,omitempty"`
	TenderReference       string           `json:"tender_reference,omitempty"`
	TenderType            string           `json:"tender_type,omitempty"`
	PricingRequirements   []map[string]any `json:"pricing_requirements,omitempty"`
	ParsedPricingSpecText string           `json:"parsed_pricing_spec_text,omitempty"`
}

// EntrypointResult tells the client whether pricing can start.
type EntrypointResult struct {
	Status              string               `json:"status"`
	NeedsPricingSpec    bool                 `json:"needs_pricing_spec"`
	Instructions        string               `json:"instructions_for_client_llm"`
	TenderContext       report.TenderContext `json:"tender_context"`
	PricingRequirements []map[string]any     `json:"pricing_requirements,omitempty"`
	PricingAnalysis     *analysis.Result     `json:"pricing_analysis,omitempty"`
}

// Entrypoint checks whether structured pricing requirements are present and
// analyses the optional schedule text.
func (s *Service) Entrypoint(_ context.Context, req EntrypointRequest) (EntrypointResult, error) {
	if req.TenderID == "" {
		return EntrypointResult{}, &ArgumentError{Err: errors.New("tender_id is required")}
	}

	tenderType := analysis.ParseTenderType(req.TenderType)
	tc := report.TenderContext{
		TenderID:        req.TenderID,
		TenderTitle:     req.TenderTitle,
		TenderReference: req.TenderReference,
		TenderType:      string(tenderType),
	}

	if len(req.PricingRequirements) == 0 {
		return EntrypointResult{
			Status:           StatusMissingSpec,
			NeedsPricingSpec: true,
			Instructions:     missingSpecInstructions,
			TenderContext:    tc,
		}, nil
	}

	out := EntrypointResult{
		Status:              StatusReady,
		Instructions:        readyInstructions,
		TenderContext:       tc,
		PricingRequirements: req.PricingRequirements,
	}
	if req.ParsedPricingSpecText != "" {
		a := analysis.Analyze(req.ParsedPricingSpecText, tenderType)
		out.PricingAnalysis = &a
	}
	return out, nil
}

// ModelRequest is the input of build_pricing_model.
type ModelRequest struct {
	Items    []pricing.Item
	Rates    RateArgs
	Strategy string
}

// BuildModel prices req.Items under the configured defaults overlaid with
// req.Rates, then the preset of req.Strategy (balanced when empty).
func (s *Service) BuildModel(ctx context.Context, req ModelRequest) (view pricing.ModelView, err error) {
	start := time.Now()
	strategy := pricing.StrategyBalanced
	defer func() {
		s.emit(ctx, observability.EventModelBuilt, "build_pricing_model", start, err, map[string]any{
			"strategy":     string(strategy),
			"items":        len(req.Items),
			"grand_totals": map[string]float64{string(strategy): view.Totals.GrandTotal},
		})
	}()

	if req.Strategy != "" {
		if strategy, err = pricing.ParseStrategy(req.Strategy); err != nil {
			return pricing.ModelView{}, err
		}
	}

	base, presets, err := s.load(ctx)
	if err != nil {
		return pricing.ModelView{}, err
	}
	params, err := presets.Effective(strategy, req.Rates.Over(base))
	if err != nil {
		return pricing.ModelView{}, err
	}

	m, err := pricing.Compute(req.Items, params)
	if err != nil {
		return pricing.ModelView{}, err
	}
	view = m.View()
	view.Strategy = strategy
	return view, nil
}

// CompareRequest is the input of compare_pricing_scenarios.
type CompareRequest struct {
	Items      []pricing.Item
	Rates      RateArgs
	Strategies []string
}

// Compare runs req.Strategies over the same items. An empty list compares
// every preset.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (view pricing.ComparisonView, err error) {
	start := time.Now()
	defer func() {
		totals := make(map[string]float64, len(view.Comparison.ByStrategy))
		for _, r := range view.Comparison.ByStrategy {
			totals[string(r.Strategy)] = r.GrandTotal
		}
		s.emit(ctx, observability.EventCompareDone, "compare_pricing_scenarios", start, err, map[string]any{
			"strategies":   len(view.Comparison.ByStrategy),
			"items":        len(req.Items),
			"grand_totals": totals,
		})
	}()

	base, presets, err := s.load(ctx)
	if err != nil {
		return pricing.ComparisonView{}, err
	}

	c := pricing.Comparator{Presets: presets, Parallel: s.parallel}
	cmp, err := c.Compare(req.Items, req.Rates.Over(base), req.Strategies)
	if err != nil {
		return pricing.ComparisonView{}, err
	}
	return cmp.View(), nil
}

// ReportRequest is the input of generate_pricing_report_html.
type ReportRequest struct {
	Tender  report.TenderContext
	Company report.CompanyContext
	Model   pricing.ModelView
	Notes   string
}

// ReportMetadata identifies a rendered report.
type ReportMetadata struct {
	ReportID       string                `json:"report_id"`
	GeneratedAt    time.Time             `json:"generated_at"`
	TenderContext  report.TenderContext  `json:"tender_context"`
	CompanyContext report.CompanyContext `json:"company_context"`
}

// ReportResult is the rendered HTML report with its metadata.
type ReportResult struct {
	HTML     string         `json:"html"`
	Metadata ReportMetadata `json:"metadata"`
}

// Document assembles the renderer input for req.
func (s *Service) Document(req ReportRequest) report.Document {
	return report.NewDocument(req.Tender, req.Company, req.Model, req.Notes)
}

// Report renders req as HTML.
func (s *Service) Report(ctx context.Context, req ReportRequest) (ReportResult, error) {
	d := s.Document(req)
	out, err := Render(ctx, s, d, "html", report.HTML)
	if err != nil {
		return ReportResult{}, err
	}
	return ReportResult{
		HTML: out,
		Metadata: ReportMetadata{
			ReportID:       d.ID,
			GeneratedAt:    d.GeneratedAt,
			TenderContext:  d.Tender,
			CompanyContext: d.Company,
		},
	}, nil
}

// Render runs one renderer over d and records the outcome.
func Render[T string | []byte](ctx context.Context, s *Service, d report.Document, format string, render func(report.Document) (T, error)) (T, error) {
	start := time.Now()
	out, err := render(d)
	s.emit(ctx, observability.EventReportRendered, "generate_pricing_report", start, err, map[string]any{
		"format":    format,
		"report_id": d.ID,
		"lines":     len(d.Model.LineItems),
	})
	return out, err
}

// Reject records a request refused before it reached the engine, such as a
// body that is not valid JSON.
func (s *Service) Reject(ctx context.Context, operation string, err error) {
	s.emit(ctx, observability.EventRequestRejected, operation, time.Time{}, err, nil)
}

func (s *Service) load(ctx context.Context) (pricing.Parameters, pricing.PresetTable, error) {
	base, err := s.settings.Defaults(ctx)
	if err != nil {
		return pricing.Parameters{}, nil, err
	}
	presets, err := s.settings.Presets(ctx)
	if err != nil {
		return pricing.Parameters{}, nil, err
	}
	return base, presets, nil
}

func (s *Service) emit(ctx context.Context, typ observability.EventType, operation string, start time.Time, err error, data map[string]any) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
		if IsClientError(err) {
			typ = observability.EventRequestRejected
			level = slog.LevelWarn
		}
		data = map[string]any{"kind": Describe(err).Kind}
	}

	var d time.Duration
	if !start.IsZero() {
		d = time.Since(start)
	}
	s.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Operation: operation,
		Duration:  d,
		Err:       err,
		Data:      data,
	})
}

// decodeArgs unmarshals tool arguments, reporting malformed JSON as an
// ArgumentError. Empty arguments decode as an empty object.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &ArgumentError{Err: err}
	}
	return nil
}
