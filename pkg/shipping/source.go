// Package shipping resolves which shipping options a store offers for a cart
// and destination, and at what price.
package shipping

// ZoneSource supplies the zones a calculator matches addresses against.
type ZoneSource interface {
	// Zones returns zones in evaluation order.
	Zones() []Zone

	// IsDefault reports whether the zones were synthesized rather than configured.
	IsDefault() bool
}

// ConfiguredZones are zones a store owner set up.
type ConfiguredZones []Zone

// Zones returns the configured zones.
func (c ConfiguredZones) Zones() []Zone { return c }

// IsDefault returns false.
func (c ConfiguredZones) IsDefault() bool { return false }

// DefaultZones is used when a store has no zones configured: a domestic zone
// for the home country and a catch-all international zone.
type DefaultZones struct {
	zones []Zone
}

// NewDefaultZones builds the default zones for a store selling from homeCountry.
func NewDefaultZones(homeCountry string) DefaultZones {
	return DefaultZones{zones: []Zone{
		{
			ID:        "domestic",
			Name:      "Domestic",
			Countries: []Pattern{Exactly(homeCountry)},
			Rates: []RateRule{
				flatRule("standard", "Standard Shipping", "Delivered in 5-7 business days", 10, 5, 7),
				flatRule("express", "Express Shipping", "Delivered in 2-3 business days", 25, 2, 3),
				flatRule("overnight", "Overnight Shipping", "Delivered next business day", 50, 1, 1),
			},
		},
		{
			ID:        "international",
			Name:      "International",
			Countries: []Pattern{Any()},
			Rates: []RateRule{
				flatRule("international-standard", "International Standard", "Delivered in 7-14 business days", 25, 7, 14),
				flatRule("international-express", "International Express", "Delivered in 3-5 business days", 50, 3, 5),
			},
		},
	}}
}

// Zones returns the default zones.
func (d DefaultZones) Zones() []Zone { return d.zones }

// IsDefault returns true.
func (d DefaultZones) IsDefault() bool { return true }

func flatRule(id, name, description string, amount float64, minDays, maxDays int) RateRule {
	return RateRule{
		ID:            id,
		Name:          name,
		Description:   description,
		Pricing:       FlatRate{Amount: amount},
		EstimatedDays: DeliveryWindow{Min: minDays, Max: maxDays},
	}
}

// SourceFor picks the zone source for a store: its configured zones,
// or the defaults when none are configured.
func SourceFor(configured []Zone, homeCountry string) ZoneSource {
	if len(configured) == 0 {
		return NewDefaultZones(homeCountry)
	}
	return ConfiguredZones(configured)
}
