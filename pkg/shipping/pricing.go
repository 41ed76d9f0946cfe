package shipping

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Pricing computes the price of a rate rule from cart totals.
// Implementations are FlatRate, WeightBased, PriceBased and ItemBased.
type Pricing interface {
	// Type returns the configuration name of the formula.
	Type() RateType
	// Base returns the configured price parameter.
	Base() float64
	// Price returns the amount charged for totals, rounded to cents.
	Price(t Totals) float64

	sealed()
}

// FlatRate charges a constant amount.
type FlatRate struct{ Amount float64 }

// WeightBased charges PerUnit for every unit of total weight.
type WeightBased struct{ PerUnit float64 }

// PriceBased charges Percent percent of the total order value.
type PriceBased struct{ Percent float64 }

// ItemBased charges PerItem for every shippable item.
type ItemBased struct{ PerItem float64 }

var hundred = decimal.NewFromInt(100)

func (FlatRate) Type() RateType    { return RateFlat }
func (WeightBased) Type() RateType { return RateWeightBased }
func (PriceBased) Type() RateType  { return RatePriceBased }
func (ItemBased) Type() RateType   { return RateItemBased }

func (p FlatRate) Base() float64    { return p.Amount }
func (p WeightBased) Base() float64 { return p.PerUnit }
func (p PriceBased) Base() float64  { return p.Percent }
func (p ItemBased) Base() float64   { return p.PerItem }

func (p FlatRate) Price(Totals) float64 {
	return cents(decimalOf(p.Amount))
}

func (p WeightBased) Price(t Totals) float64 {
	return cents(decimalOf(p.PerUnit).Mul(decimalOf(t.Weight)))
}

func (p PriceBased) Price(t Totals) float64 {
	pct := decimalOf(p.Percent).Div(hundred)
	return cents(pct.Mul(decimalOf(t.Price)))
}

func (p ItemBased) Price(t Totals) float64 {
	return cents(decimalOf(p.PerItem).Mul(decimal.NewFromInt(int64(t.Items))))
}

func (FlatRate) sealed()    {}
func (WeightBased) sealed() {}
func (PriceBased) sealed()  {}
func (ItemBased) sealed()   {}

// NewPricing builds the formula named by t with its single price parameter.
func NewPricing(t RateType, price float64) (Pricing, error) {
	switch t {
	case RateFlat:
		return FlatRate{Amount: price}, nil
	case RateWeightBased:
		return WeightBased{PerUnit: price}, nil
	case RatePriceBased:
		return PriceBased{Percent: price}, nil
	case RateItemBased:
		return ItemBased{PerItem: price}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRateType, t)
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// decimalOf converts f, reading NaN and infinities as zero.
func decimalOf(f float64) decimal.Decimal {
	if !finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
