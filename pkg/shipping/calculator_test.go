package shipping_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shiprate/pkg/shipping"
)

func newDefaultCalculator() *shipping.Calculator {
	return shipping.NewCalculator(shipping.SourceFor(nil, "US"), "usd")
}

func TestCalculateRates_DefaultsDomestic(t *testing.T) {
	calc := newDefaultCalculator()

	items := []shipping.Item{{Weight: 1, Quantity: 2, Price: 50, RequiresShipping: true}}
	addr := shipping.Address{Country: "US", Line1: "1 Main St", City: "X", PostalCode: "00000"}

	rates := calc.CalculateRates(items, addr)
	require.Len(t, rates, 3)

	assert.Equal(t, "standard", rates[0].ID)
	assert.Equal(t, 10.0, rates[0].Price)
	assert.Equal(t, shipping.DeliveryWindow{Min: 5, Max: 7}, rates[0].EstimatedDays)

	assert.Equal(t, "express", rates[1].ID)
	assert.Equal(t, 25.0, rates[1].Price)
	assert.Equal(t, shipping.DeliveryWindow{Min: 2, Max: 3}, rates[1].EstimatedDays)

	assert.Equal(t, "overnight", rates[2].ID)
	assert.Equal(t, 50.0, rates[2].Price)
	assert.Equal(t, shipping.DeliveryWindow{Min: 1, Max: 1}, rates[2].EstimatedDays)

	for _, r := range rates {
		assert.Equal(t, "USD", r.Currency)
	}
}

func TestCalculateRates_DefaultsInternational(t *testing.T) {
	calc := newDefaultCalculator()

	quote := calc.Quote(
		[]shipping.Item{{Weight: 1, Quantity: 1, Price: 10, RequiresShipping: true}},
		shipping.Address{Country: "JP", Line1: "1-1", City: "Tokyo", PostalCode: "100-0001"},
	)

	assert.Equal(t, shipping.OutcomeRated, quote.Outcome)
	require.NotNil(t, quote.Zone)
	assert.Equal(t, "international", quote.Zone.ID)
	require.Len(t, quote.Rates, 2)
	assert.Equal(t, 25.0, quote.Rates[0].Price)
	assert.Equal(t, 50.0, quote.Rates[1].Price)
}

func TestCalculateRates_DigitalOnly(t *testing.T) {
	calc := newDefaultCalculator()

	tests := []struct {
		name  string
		items []shipping.Item
	}{
		{"no items", nil},
		{"nothing ships", []shipping.Item{
			{Weight: 0, Quantity: 1, Price: 15, RequiresShipping: false},
			{Weight: 2, Quantity: 3, Price: 5, RequiresShipping: false},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := calc.Quote(tt.items, shipping.Address{Country: "ZZ"})
			assert.Equal(t, shipping.OutcomeDigital, quote.Outcome)
			require.Len(t, quote.Rates, 1)
			assert.Equal(t, 0.0, quote.Rates[0].Price)
			assert.Equal(t, shipping.DeliveryWindow{}, quote.Rates[0].EstimatedDays)
			assert.Equal(t, shipping.DigitalDeliveryID, quote.Rates[0].ID)
			assert.Nil(t, quote.Zone)
		})
	}
}

func TestCalculateRates_NoZone(t *testing.T) {
	zones := []shipping.Zone{
		{
			ID:        "domestic",
			Countries: []shipping.Pattern{shipping.Exactly("US")},
			Rates:     []shipping.RateRule{{ID: "std", Pricing: shipping.FlatRate{Amount: 5}}},
		},
	}
	calc := shipping.NewCalculator(shipping.SourceFor(zones, "US"), "USD")

	quote := calc.Quote(
		[]shipping.Item{{Weight: 1, Quantity: 1, Price: 10, RequiresShipping: true}},
		shipping.Address{Country: "FR"},
	)
	assert.Equal(t, shipping.OutcomeNoZone, quote.Outcome)
	assert.NotNil(t, quote.Rates)
	assert.Empty(t, quote.Rates)
}

func TestCalculateRates_NoApplicableRule(t *testing.T) {
	zones := []shipping.Zone{
		{
			ID:        "domestic",
			Countries: []shipping.Pattern{shipping.Exactly("US")},
			Rates: []shipping.RateRule{{
				ID:         "bulk",
				Pricing:    shipping.FlatRate{Amount: 5},
				Conditions: shipping.Conditions{Items: shipping.Range{Min: ptr(5.0)}},
			}},
		},
	}
	calc := shipping.NewCalculator(shipping.ConfiguredZones(zones), "USD")

	items := []shipping.Item{{Weight: 1, Quantity: 3, Price: 10, RequiresShipping: true}}
	quote := calc.Quote(items, shipping.Address{Country: "US"})
	assert.Equal(t, shipping.OutcomeNoRates, quote.Outcome)
	assert.Empty(t, quote.Rates)
	assert.Equal(t, 3, quote.Totals.Items)

	items[0].Quantity = 5
	assert.Len(t, calc.CalculateRates(items, shipping.Address{Country: "US"}), 1)
}

func TestCalculateRates_IgnoresDigitalItemsInTotals(t *testing.T) {
	zones := []shipping.Zone{{
		ID:        "all",
		Countries: []shipping.Pattern{shipping.Any()},
		Rates:     []shipping.RateRule{{ID: "w", Pricing: shipping.WeightBased{PerUnit: 2}}},
	}}
	calc := shipping.NewCalculator(shipping.ConfiguredZones(zones), "USD")

	items := []shipping.Item{
		{Weight: 1.5, Quantity: 2, Price: 10, RequiresShipping: true},
		{Weight: 10, Quantity: 1, Price: 10, RequiresShipping: false},
	}
	rates := calc.CalculateRates(items, shipping.Address{Country: "US"})
	require.Len(t, rates, 1)
	assert.Equal(t, 6.0, rates[0].Price)
}

func TestSourceFor(t *testing.T) {
	def := shipping.SourceFor(nil, "CA")
	assert.True(t, def.IsDefault())
	require.Len(t, def.Zones(), 2)
	assert.True(t, def.Zones()[0].Matches(shipping.Address{Country: "CA"}))
	assert.False(t, def.Zones()[0].Matches(shipping.Address{Country: "US"}))

	configured := shipping.SourceFor([]shipping.Zone{{ID: "x"}}, "CA")
	assert.False(t, configured.IsDefault())
	assert.Len(t, configured.Zones(), 1)
}

func TestNewCalculator_Options(t *testing.T) {
	calc := shipping.NewCalculator(shipping.SourceFor(nil, "GB"), "gbp", shipping.WithWeightUnit(shipping.WeightLB))
	assert.Equal(t, "GBP", calc.Currency())
	assert.Equal(t, shipping.WeightLB, calc.WeightUnit())
	assert.True(t, calc.Source().IsDefault())

	assert.Equal(t, shipping.WeightKG, newDefaultCalculator().WeightUnit())
}

func TestValidateAddress(t *testing.T) {
	result := shipping.ValidateAddress(shipping.Address{Country: "U", Line1: "", City: "", PostalCode: ""})
	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 4)

	result = shipping.ValidateAddress(shipping.Address{Country: "US", Line1: "   ", City: "X", PostalCode: "00000"})
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"address line 1 is required"}, result.Errors)

	result = shipping.ValidateAddress(shipping.Address{Country: "US", Line1: "1 Main St", City: "X", PostalCode: "00000"})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateAddress_CountryLength(t *testing.T) {
	base := shipping.Address{Line1: "1 Main St", City: "X", PostalCode: "00000"}
	for country, valid := range map[string]bool{
		"US":  true,
		" US": false,
		"US ": false,
		"U ":  false,
		"É":   false,
		"ÉU":  true,
		"USA": false,
	} {
		addr := base
		addr.Country = country
		assert.Equal(t, valid, shipping.ValidateAddress(addr).Valid, "country %q", country)
	}
}

func TestCalculateRates_NonFiniteItem(t *testing.T) {
	calc := newDefaultCalculator()
	items := []shipping.Item{
		{Weight: math.NaN(), Quantity: 1, Price: 10, RequiresShipping: true},
		{Weight: 1, Quantity: 1, Price: math.Inf(1), RequiresShipping: true},
	}

	var rates []shipping.Rate
	require.NotPanics(t, func() {
		rates = calc.CalculateRates(items, shipping.Address{Country: "US"})
	})
	require.Len(t, rates, 3)
	assert.Equal(t, 10.0, rates[0].Price)
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name string
		rate shipping.Rate
		want string
	}{
		{
			name: "range",
			rate: shipping.Rate{Name: "Standard Shipping", Price: 10, Currency: "USD", EstimatedDays: shipping.DeliveryWindow{Min: 5, Max: 7}},
			want: "Standard Shipping - USD 10.00 (5-7 business days)",
		},
		{
			name: "single day",
			rate: shipping.Rate{Name: "Overnight", Price: 50, Currency: "USD", EstimatedDays: shipping.DeliveryWindow{Min: 1, Max: 1}},
			want: "Overnight - USD 50.00 (1 business day)",
		},
		{
			name: "fixed days",
			rate: shipping.Rate{Name: "Courier", Price: 12.5, Currency: "EUR", EstimatedDays: shipping.DeliveryWindow{Min: 3, Max: 3}},
			want: "Courier - EUR 12.50 (3 business days)",
		},
		{
			name: "free",
			rate: shipping.Rate{Name: "Pickup", Price: 0, Currency: "USD", EstimatedDays: shipping.DeliveryWindow{Min: 1, Max: 2}},
			want: "Pickup - Free (1-2 business days)",
		},
		{
			name: "digital",
			rate: shipping.DigitalDeliveryRate("usd"),
			want: "Digital Delivery - Free (instant)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shipping.FormatRate(tt.rate))
		})
	}
}
