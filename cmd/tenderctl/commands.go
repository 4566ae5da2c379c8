package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simplici0/tenderpricing/internal/importer"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/report"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

// readItems loads a JSON, CSV or XLSX schedule.
func readItems(path string) ([]pricing.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer f.Close()

	return importer.Parse(f, path)
}

func newPriceCmd(opts *rootOptions) *cobra.Command {
	var (
		itemsPath string
		strategy  string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Build a pricing model for one strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(itemsPath)
			if err != nil {
				return exitError(cmd, err)
			}

			svc, cleanup, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return exitError(cmd, err)
			}
			defer cleanup()

			view, err := svc.BuildModel(cmd.Context(), tools.ModelRequest{
				Items:    items,
				Rates:    opts.rates.args(cmd),
				Strategy: strategy,
			})
			if err != nil {
				return exitError(cmd, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printModel(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&itemsPath, "items", "i", "", "line items file (.json, .csv or .xlsx)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "strategy preset: low_cost, balanced or premium (default balanced)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the model as JSON")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		itemsPath  string
		strategies []string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare strategy presets side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(itemsPath)
			if err != nil {
				return exitError(cmd, err)
			}

			svc, cleanup, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return exitError(cmd, err)
			}
			defer cleanup()

			view, err := svc.Compare(cmd.Context(), tools.CompareRequest{
				Items:      items,
				Rates:      opts.rates.args(cmd),
				Strategies: strategies,
			})
			if err != nil {
				return exitError(cmd, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printComparison(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&itemsPath, "items", "i", "", "line items file (.json, .csv or .xlsx)")
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "comma separated strategies in output order (default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the comparison as JSON")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		itemsPath string
		strategy  string
		format    string
		outPath   string
		notes     string
		tender    report.TenderContext
		company   report.CompanyContext
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a pricing report as HTML, XLSX or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			render, err := renderer(format)
			if err != nil {
				return exitError(cmd, err)
			}

			items, err := readItems(itemsPath)
			if err != nil {
				return exitError(cmd, err)
			}

			svc, cleanup, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return exitError(cmd, err)
			}
			defer cleanup()

			view, err := svc.BuildModel(cmd.Context(), tools.ModelRequest{
				Items:    items,
				Rates:    opts.rates.args(cmd),
				Strategy: strategy,
			})
			if err != nil {
				return exitError(cmd, err)
			}

			d := svc.Document(tools.ReportRequest{Tender: tender, Company: company, Model: view, Notes: notes})
			out, err := tools.Render(cmd.Context(), svc, d, format, render)
			if err != nil {
				return exitError(cmd, err)
			}

			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return exitError(cmd, fmt.Errorf("write report: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s report %s written to %s (%s)\n",
				strings.ToUpper(format), d.ID, outPath, report.FormatMoney(d.Currency(), view.Totals.GrandTotal))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&itemsPath, "items", "i", "", "line items file (.json, .csv or .xlsx)")
	f.StringVarP(&strategy, "strategy", "s", "", "strategy preset (default balanced)")
	f.StringVarP(&format, "format", "f", "html", "report format: html, xlsx or pdf")
	f.StringVarP(&outPath, "out", "o", "", "output file")
	f.StringVar(&notes, "notes", "", "notes and qualifications; replaces the standard text")
	f.StringVar(&tender.TenderTitle, "tender-title", "", "tender title")
	f.StringVar(&tender.TenderReference, "tender-ref", "", "tender reference number")
	f.StringVar(&tender.TenderType, "tender-type", "", "public or private")
	f.StringVar(&company.CompanyName, "company", "", "bidding company name")
	_ = cmd.MarkFlagRequired("items")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// renderer returns the byte renderer for a report format.
func renderer(format string) (func(report.Document) ([]byte, error), error) {
	switch format {
	case "html":
		return func(d report.Document) ([]byte, error) {
			s, err := report.HTML(d)
			return []byte(s), err
		}, nil
	case "xlsx":
		return report.XLSX, nil
	case "pdf":
		return report.PDF, nil
	}
	return nil, &tools.ArgumentError{Err: fmt.Errorf("unknown report format %q: must be html, xlsx or pdf", format)}
}
