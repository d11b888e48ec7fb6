package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	flagJSON          = "json"
	flagChart         = "chart"
	flagInterval      = "interval"
	flagSampling      = "sampling"
	flagStartDate     = "start-date"
	flagEndDate       = "end-date"
	flagProvider      = "provider"
	flagCurrency      = "currency"
	flagAPIKey        = "api-key"
	flagConfig        = "config"
	flagListProviders = "list-providers"
	flagSearch        = "search"
	flagSearchLimit   = "search-limit"
	flagVerbose       = "verbose"
)

func init() {
	// -v is taken by --verbose.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Aliases: []string{"V"}, Usage: "print the version"}
}

func main() {
	app := newApp(&runner{now: time.Now})
	if err := app.Run(flagsFirst(app.Flags, os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(r *runner) *cli.App {
	var verbosity int
	return &cli.App{
		Name:                   "pricr",
		Usage:                  "Fetch crypto and stock prices from your terminal",
		UsageText:              "pricr [flags] SYMBOL... | pricr [flags] 3.5EUR TARGET... | pricr --search QUERY",
		Version:                "1.0.0",
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagJSON, Usage: "output as JSON"},
			&cli.BoolFlag{Name: flagChart, Usage: "show historical prices"},
			&cli.StringFlag{Name: flagInterval, Value: "1M", Usage: "chart interval preset (1D, 5D, 1M, 6M, YTD, 1Y, 5Y, ALL)"},
			&cli.StringFlag{Name: flagSampling, Value: "auto", Usage: "sampling density for chart mode (auto, hourly, daily)"},
			&cli.StringFlag{Name: flagStartDate, Usage: "start date for chart mode in UTC (YYYY-MM-DD), overrides --interval"},
			&cli.StringFlag{Name: flagEndDate, Usage: "end date for chart mode in UTC (YYYY-MM-DD)"},
			&cli.StringFlag{Name: flagProvider, Aliases: []string{"p"}, Usage: "price provider to use, disables fallback"},
			&cli.StringFlag{Name: flagCurrency, Aliases: []string{"c"}, Usage: "fiat currency for prices"},
			&cli.StringFlag{Name: flagAPIKey, EnvVars: []string{"COINMARKETCAP_API_KEY"}, Usage: "API key for providers that require one"},
			&cli.StringFlag{Name: flagConfig, Usage: "explicit config file path (overrides XDG lookup)"},
			&cli.BoolFlag{Name: flagListProviders, Usage: "list available providers"},
			&cli.StringFlag{Name: flagSearch, Aliases: []string{"s"}, Usage: "search ticker symbols by keyword"},
			&cli.IntFlag{Name: flagSearchLimit, Value: 10, Usage: "max ticker search results (1-50)"},
			&cli.BoolFlag{Name: flagVerbose, Aliases: []string{"v"}, Count: &verbosity, Usage: "increase log verbosity (-v, -vv)"},
		},
		Action: func(cCtx *cli.Context) error {
			opts, err := parseOptions(cCtx, verbosity)
			if err != nil {
				return err
			}
			if r.out == nil {
				r.out = cCtx.App.Writer
			}
			return r.run(cCtx.Context, opts)
		},
	}
}

// options is the validated command line.
type options struct {
	symbols       []string
	json          bool
	chart         bool
	interval      rangePreset
	sampling      string
	startDate     *time.Time
	endDate       *time.Time
	provider      *string
	currency      string
	apiKey        string
	configPath    string
	listProviders bool
	search        *string
	searchLimit   int
	verbosity     int
}

func parseOptions(cCtx *cli.Context, verbosity int) (options, error) {
	o := options{
		symbols:       cCtx.Args().Slice(),
		json:          cCtx.Bool(flagJSON),
		chart:         cCtx.Bool(flagChart),
		sampling:      cCtx.String(flagSampling),
		currency:      cCtx.String(flagCurrency),
		apiKey:        cCtx.String(flagAPIKey),
		configPath:    cCtx.String(flagConfig),
		listProviders: cCtx.Bool(flagListProviders),
		searchLimit:   cCtx.Int(flagSearchLimit),
		verbosity:     verbosity,
	}

	preset, err := parseRangePreset(cCtx.String(flagInterval))
	if err != nil {
		return o, err
	}
	o.interval = preset

	if o.searchLimit < 1 || o.searchLimit > 50 {
		return o, fmt.Errorf("--search-limit must be between 1 and 50, got %d", o.searchLimit)
	}
	if cCtx.IsSet(flagProvider) {
		p := cCtx.String(flagProvider)
		o.provider = &p
	}
	if cCtx.IsSet(flagSearch) {
		if o.chart || len(o.symbols) > 0 {
			return o, fmt.Errorf("--search cannot be combined with --chart or symbols")
		}
		q := cCtx.String(flagSearch)
		o.search = &q
	}
	for _, f := range []struct {
		name string
		dst  **time.Time
		what string
	}{
		{flagStartDate, &o.startDate, "start"},
		{flagEndDate, &o.endDate, "end"},
	} {
		if !cCtx.IsSet(f.name) {
			continue
		}
		if !o.chart {
			return o, fmt.Errorf("--%s requires --chart", f.name)
		}
		d, err := parseDate(cCtx.String(f.name), f.what)
		if err != nil {
			return o, err
		}
		*f.dst = &d
	}
	return o, nil
}
