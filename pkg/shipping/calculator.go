package shipping

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Outcome classifies how a quote was resolved.
type Outcome string

const (
	OutcomeDigital Outcome = "digital"  // nothing to ship
	OutcomeNoZone  Outcome = "no_zone"  // destination not served
	OutcomeNoRates Outcome = "no_rates" // zone matched, no rule applied
	OutcomeRated   Outcome = "rated"
)

// DigitalDeliveryID is the ID of the synthetic rate offered when no item ships.
const DigitalDeliveryID = "digital_delivery"

// Quote is the result of a rate calculation with its diagnostics.
type Quote struct {
	Rates   []Rate
	Outcome Outcome
	Zone    *Zone // nil unless a zone matched
	Totals  Totals
}

// Calculator resolves shipping rates for one store. It is immutable and safe
// for concurrent use.
type Calculator struct {
	source     ZoneSource
	currency   string
	weightUnit WeightUnit
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithWeightUnit sets the unit item weights and weight bounds are expressed in.
func WithWeightUnit(u WeightUnit) Option {
	return func(c *Calculator) {
		c.weightUnit = u
	}
}

// NewCalculator creates a calculator over source, pricing in currency.
func NewCalculator(source ZoneSource, currency string, opts ...Option) *Calculator {
	c := &Calculator{
		source:     source,
		currency:   strings.ToUpper(currency),
		weightUnit: WeightKG,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Currency returns the store currency.
func (c *Calculator) Currency() string { return c.currency }

// WeightUnit returns the store weight unit.
func (c *Calculator) WeightUnit() WeightUnit { return c.weightUnit }

// Source returns the zone source the calculator was built with.
func (c *Calculator) Source() ZoneSource { return c.source }

// CalculateRates returns the shipping options for items sent to addr,
// cheapest first. An empty list means nothing can ship there.
func (c *Calculator) CalculateRates(items []Item, addr Address) []Rate {
	return c.Quote(items, addr).Rates
}

// Quote calculates rates and reports how they were resolved.
func (c *Calculator) Quote(items []Item, addr Address) Quote {
	shippable := Shippable(items)
	if len(shippable) == 0 {
		return Quote{
			Rates:   []Rate{DigitalDeliveryRate(c.currency)},
			Outcome: OutcomeDigital,
		}
	}

	zone := FindApplicableZone(c.source.Zones(), addr)
	if zone == nil {
		return Quote{Rates: []Rate{}, Outcome: OutcomeNoZone}
	}

	totals := Aggregate(shippable)
	rates := Evaluate(zone, totals, c.currency)
	outcome := OutcomeRated
	if len(rates) == 0 {
		outcome = OutcomeNoRates
	}
	return Quote{
		Rates:   rates,
		Outcome: outcome,
		Zone:    zone,
		Totals:  totals,
	}
}

// DigitalDeliveryRate is the free, instant rate for carts with nothing to ship.
func DigitalDeliveryRate(currency string) Rate {
	return Rate{
		ID:          DigitalDeliveryID,
		Name:        "Digital Delivery",
		Description: "No shipping required",
		Price:       0,
		Currency:    strings.ToUpper(currency),
	}
}

// AddressValidation is the result of ValidateAddress.
type AddressValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateAddress checks that addr has what checkout needs. It does not check
// country codes against ISO 3166 or postal formats per country.
func ValidateAddress(addr Address) AddressValidation {
	errs := make([]string, 0, 4)
	if utf8.RuneCountInString(addr.Country) != 2 || strings.TrimSpace(addr.Country) != addr.Country {
		errs = append(errs, "country must be a 2-letter country code")
	}
	if strings.TrimSpace(addr.Line1) == "" {
		errs = append(errs, "address line 1 is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		errs = append(errs, "city is required")
	}
	if strings.TrimSpace(addr.PostalCode) == "" {
		errs = append(errs, "postal code is required")
	}
	return AddressValidation{Valid: len(errs) == 0, Errors: errs}
}

// FormatRate renders a rate for display, e.g.
// "Standard Shipping - USD 10.00 (5-7 business days)".
func FormatRate(r Rate) string {
	price := "Free"
	if !r.IsFree() {
		price = fmt.Sprintf("%s %.2f", r.Currency, r.Price)
	}
	return fmt.Sprintf("%s - %s (%s)", r.Name, price, formatDays(r.EstimatedDays))
}

func formatDays(d DeliveryWindow) string {
	switch {
	case d.Max == 0:
		return "instant"
	case d.Min == d.Max && d.Min == 1:
		return "1 business day"
	case d.Min == d.Max:
		return fmt.Sprintf("%d business days", d.Min)
	}
	return fmt.Sprintf("%d-%d business days", d.Min, d.Max)
}
