package shipping

import (
	"fmt"
	"sort"
)

// Range is an inclusive interval; a nil bound leaves that side open.
type Range struct {
	Min *float64
	Max *float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IsZero reports whether the range has no bounds.
func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

func (r Range) validate() error {
	if r.Min != nil && !finite(*r.Min) {
		return fmt.Errorf("min %v is not a number", *r.Min)
	}
	if r.Max != nil && !finite(*r.Max) {
		return fmt.Errorf("max %v is not a number", *r.Max)
	}
	if r.Min != nil && *r.Min < 0 {
		return fmt.Errorf("min %v is negative", *r.Min)
	}
	if r.Max != nil && *r.Max < 0 {
		return fmt.Errorf("max %v is negative", *r.Max)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("min %v exceeds max %v", *r.Min, *r.Max)
	}
	return nil
}

// Conditions restrict when a rate rule applies.
// The zero value applies to every cart.
type Conditions struct {
	Weight Range
	Price  Range
	Items  Range
}

// Applies reports whether the totals satisfy every bound.
func (c Conditions) Applies(t Totals) bool {
	return c.Weight.Contains(t.Weight) &&
		c.Price.Contains(t.Price) &&
		c.Items.Contains(float64(t.Items))
}

// RateRule is a pricing rule within a zone.
type RateRule struct {
	ID            string
	Name          string
	Description   string
	Pricing       Pricing
	Conditions    Conditions
	EstimatedDays DeliveryWindow
	Carrier       string
	Service       string
}

// Applies reports whether the rule is offered for the totals.
func (r RateRule) Applies(t Totals) bool {
	return r.Conditions.Applies(t)
}

// Rate prices the rule for the totals.
func (r RateRule) Rate(t Totals, currency string) Rate {
	return Rate{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Pricing.Price(t),
		Currency:      currency,
		EstimatedDays: r.EstimatedDays,
		Carrier:       r.Carrier,
		Service:       r.Service,
	}
}

// Evaluate prices every applicable rule of zone, cheapest first.
// Rules with equal prices keep their configured order. A rule whose price
// parameter is NaN or infinite is never offered.
func Evaluate(zone *Zone, totals Totals, currency string) []Rate {
	if zone == nil {
		return []Rate{}
	}

	rates := make([]Rate, 0, len(zone.Rates))
	for _, rule := range zone.Rates {
		if !finite(rule.Pricing.Base()) || !rule.Applies(totals) {
			continue
		}
		rates = append(rates, rule.Rate(totals, currency))
	}

	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Price < rates[j].Price
	})
	return rates
}
