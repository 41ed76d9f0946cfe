package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tournevent/shiprate/internal/store"
	"github.com/tournevent/shiprate/pkg/shipping"
	"go.uber.org/zap"
)

var quoteOpts struct {
	settings string
	items    []string
	address  shipping.Address
	asJSON   bool
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Calculate shipping rates for a cart from a settings file",
	Example: `  shiprate quote --settings stores/acme.yaml --item 1.5,2,19.99 --country CA --state ON
  shiprate quote --item 0,1,9.99,digital --country US`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

var checkDir string

var checkCmd = &cobra.Command{
	Use:   "check [store-id...]",
	Short: "Load and validate store settings",
	Long:  "Loads the settings of the given stores, or of every store in the settings source, and reports the ones that fail to load.",
	RunE:  runCheck,
}

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteOpts.settings, "settings", "", "store settings file (.json, .yaml); defaults apply without one")
	f.StringArrayVar(&quoteOpts.items, "item", nil, "cart item as weight,quantity,price[,digital]; repeatable")
	f.StringVar(&quoteOpts.address.Country, "country", "", "destination country code")
	f.StringVar(&quoteOpts.address.State, "state", "", "destination state or province code")
	f.StringVar(&quoteOpts.address.PostalCode, "postal-code", "", "destination postal code")
	f.StringVar(&quoteOpts.address.City, "city", "", "destination city")
	f.StringVar(&quoteOpts.address.Line1, "line1", "", "destination street address")
	f.BoolVar(&quoteOpts.asJSON, "json", false, "print the quote as JSON")
	_ = quoteCmd.MarkFlagRequired("country")
	_ = quoteCmd.MarkFlagRequired("item")

	checkCmd.Flags().StringVar(&checkDir, "dir", "", "settings directory, overriding SETTINGS_SOURCE and SETTINGS_DIR")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items := make([]shipping.Item, 0, len(quoteOpts.items))
	for _, s := range quoteOpts.items {
		item, err := parseItem(s)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	settings := &store.Settings{}
	if quoteOpts.settings != "" {
		if settings, err = readSettings(quoteOpts.settings); err != nil {
			return err
		}
	}
	settings.ApplyDefaults(storeDefaults(cfg))

	calc, err := settings.Calculator()
	if err != nil {
		return err
	}
	quote := calc.Quote(items, quoteOpts.address)
	return printQuote(cmd.OutOrStdout(), quote, quoteOpts.asJSON)
}

// parseItem parses "weight,quantity,price" with an optional ",digital" marking
// an item that needs no shipping.
func parseItem(s string) (shipping.Item, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return shipping.Item{}, fmt.Errorf("item %q: want weight,quantity,price[,digital]", s)
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return shipping.Item{}, fmt.Errorf("item %q: weight: %w", s, err)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return shipping.Item{}, fmt.Errorf("item %q: quantity: %w", s, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return shipping.Item{}, fmt.Errorf("item %q: price: %w", s, err)
	}
	item := shipping.Item{Weight: weight, Quantity: quantity, Price: price, RequiresShipping: true}
	if err := item.Validate(); err != nil {
		return shipping.Item{}, fmt.Errorf("item %q: %w", s, err)
	}
	if len(parts) == 4 {
		if strings.TrimSpace(parts[3]) != "digital" {
			return shipping.Item{}, fmt.Errorf("item %q: unknown flag %q", s, parts[3])
		}
		item.RequiresShipping = false
	}
	return item, nil
}

func readSettings(path string) (*store.Settings, error) {
	format, ok := store.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported settings format", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := store.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func printQuote(w io.Writer, quote shipping.Quote, asJSON bool) error {
	if asJSON {
		out := struct {
			Outcome shipping.Outcome `json:"outcome"`
			ZoneID  string           `json:"zoneId,omitempty"`
			Totals  shipping.Totals  `json:"totals"`
			Rates   []shipping.Rate  `json:"rates"`
		}{Outcome: quote.Outcome, Totals: quote.Totals, Rates: quote.Rates}
		if quote.Zone != nil {
			out.ZoneID = quote.Zone.ID
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	switch quote.Outcome {
	case shipping.OutcomeNoZone:
		fmt.Fprintln(w, "No shipping zone covers this address.")
		return nil
	case shipping.OutcomeNoRates:
		fmt.Fprintf(w, "Zone %s has no rate for this cart.\n", quote.Zone.ID)
		return nil
	case shipping.OutcomeRated:
		fmt.Fprintf(w, "Zone %s:\n", quote.Zone.ID)
	}
	for _, r := range quote.Rates {
		fmt.Fprintf(w, "  %s\n", shipping.FormatRate(r))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newCLILogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var repo store.Repository
	if checkDir != "" {
		repo = store.NewFileRepository(checkDir)
	} else {
		r, closeRepo, err := initRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeRepo()
		repo = r
	}

	registry := store.NewRegistry(repo, store.WithDefaults(storeDefaults(cfg)))
	loadErr := registry.Preload(ctx, args...)

	w := cmd.OutOrStdout()
	for _, id := range registry.Cached() {
		fmt.Fprintf(w, "ok    %s\n", id)
	}
	if loadErr == nil {
		return nil
	}

	failures := unjoin(loadErr)
	for _, err := range failures {
		fmt.Fprintf(w, "FAIL  %v\n", err)
	}
	logger.Error("Store settings failed to load", zap.Int("failed", len(failures)), zap.Int("ok", registry.Count()))
	return fmt.Errorf("%d store(s) failed to load", len(failures))
}

// unjoin splits an errors.Join result back into its errors.
func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
