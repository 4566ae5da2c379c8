// Command tenderctl prices a schedule of line items from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/tenderpricing/internal/config"
	"github.com/Simplici0/tenderpricing/internal/db"
	"github.com/Simplici0/tenderpricing/internal/migrations"
	"github.com/Simplici0/tenderpricing/internal/observability"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/seed"
	"github.com/Simplici0/tenderpricing/internal/store"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	dbPath  string
	verbose bool
	rates   rateFlags
}

// rateFlags holds the percentage flags shared by every pricing command.
type rateFlags struct {
	overhead, contingency, profit, tax float64
	currency                           string
}

func (f rateFlags) args(cmd *cobra.Command) tools.RateArgs {
	var a tools.RateArgs
	flags := cmd.Flags()
	if flags.Changed("overhead") {
		a.OverheadPct = &f.overhead
	}
	if flags.Changed("contingency") {
		a.ContingencyPct = &f.contingency
	}
	if flags.Changed("profit") {
		a.ProfitMarginPct = &f.profit
	}
	if flags.Changed("tax") {
		a.TaxRatePct = &f.tax
	}
	if flags.Changed("currency") {
		a.CurrencySymbol = &f.currency
	}
	return a
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tenderctl",
		Short:         "Price tender line items and render pricing reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", "", "read presets and defaults from this SQLite database instead of the environment")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log pricing events to stderr")
	pf.Float64Var(&opts.rates.overhead, "overhead", 0, "overhead percentage (default from config)")
	pf.Float64Var(&opts.rates.contingency, "contingency", 0, "contingency percentage (default from config)")
	pf.Float64Var(&opts.rates.profit, "profit", 0, "profit margin percentage (default from config)")
	pf.Float64Var(&opts.rates.tax, "tax", 0, "tax rate percentage (default from config)")
	pf.StringVar(&opts.rates.currency, "currency", "", "currency symbol (default from config)")

	root.AddCommand(
		newPriceCmd(opts),
		newCompareCmd(opts),
		newReportCmd(opts),
	)

	return root
}

// service builds the pricing service for one command run. The returned
// cleanup closes the database when one was opened.
func (o *rootOptions) service(ctx context.Context, stderr io.Writer) (*tools.Service, func(), error) {
	cfg := config.Load()

	var observer observability.Observer = observability.Noop{}
	if o.verbose {
		observer = observability.NewSlogObserver(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if o.dbPath == "" {
		settings := tools.StaticSettings{Params: cfg.Pricing, Table: pricing.DefaultPresets()}
		return tools.NewService(settings, cfg.ParallelCompare, observer), func() {}, nil
	}

	database, err := db.Open(ctx, o.dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, nil, err
	}
	if _, err := seed.Run(ctx, database, seed.Config{Defaults: cfg.Pricing}); err != nil {
		database.Close()
		return nil, nil, err
	}
	cleanup := func() { database.Close() }
	return tools.NewService(store.New(database), cfg.ParallelCompare, observer), cleanup, nil
}

func exitError(cmd *cobra.Command, err error) error {
	body := tools.Describe(err)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", errorLabel(body.Kind), body.Message)
	return err
}
