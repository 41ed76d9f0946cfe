package shipping

import "errors"

// RateType identifies the pricing formula of a rate rule.
type RateType string

const (
	RateFlat        RateType = "flat_rate"
	RateWeightBased RateType = "weight_based"
	RatePriceBased  RateType = "price_based"
	RateItemBased   RateType = "item_based"
)

// WeightUnit is the unit a store records item weights in.
// Weights are never converted between units.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightG  WeightUnit = "g"
	WeightLB WeightUnit = "lb"
	WeightOZ WeightUnit = "oz"
)

// Valid reports whether u is a known unit.
func (u WeightUnit) Valid() bool {
	switch u {
	case WeightKG, WeightG, WeightLB, WeightOZ:
		return true
	}
	return false
}

// Address is a shipping destination.
type Address struct {
	Country    string `json:"country"` // ISO 3166-1 alpha-2, e.g. "US", "CA"
	State      string `json:"state,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
}

// Item is a cart line item reduced to what shipping needs.
type Item struct {
	Weight           float64 `json:"weight"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	RequiresShipping bool    `json:"requiresShipping"`
}

// Validate reports values an item cannot be priced with.
func (it Item) Validate() error {
	switch {
	case it.Quantity < 0:
		return errors.New("quantity must not be negative")
	case !finite(it.Weight) || it.Weight < 0:
		return errors.New("weight must be a non-negative number")
	case !finite(it.Price) || it.Price < 0:
		return errors.New("price must be a non-negative number")
	}
	return nil
}

// DeliveryWindow is an estimated delivery range in business days.
type DeliveryWindow struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Totals are the aggregated values of the shippable items in a cart.
type Totals struct {
	Weight float64 `json:"weight"`
	Price  float64 `json:"price"`
	Items  int     `json:"items"`
}

// Rate is a priced shipping option offered at checkout.
type Rate struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Price         float64        `json:"price"`
	Currency      string         `json:"currency"`
	EstimatedDays DeliveryWindow `json:"estimatedDays"`
	Carrier       string         `json:"carrier,omitempty"`
	Service       string         `json:"service,omitempty"`
}

// IsFree reports whether the rate costs nothing.
func (r Rate) IsFree() bool {
	return r.Price == 0
}
