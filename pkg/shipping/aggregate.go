package shipping

import (
	"github.com/shopspring/decimal"
)

// Shippable returns the items that require physical shipping.
func Shippable(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.RequiresShipping {
			out = append(out, item)
		}
	}
	return out
}

// TotalWeight sums weight × quantity over shippable items.
func TotalWeight(items []Item) float64 {
	return sumOf(items, func(it Item) float64 { return it.Weight })
}

// TotalPrice sums price × quantity over shippable items.
func TotalPrice(items []Item) float64 {
	return sumOf(items, func(it Item) float64 { return it.Price })
}

// TotalItems sums quantities over shippable items.
func TotalItems(items []Item) int {
	total := 0
	for _, item := range items {
		if item.RequiresShipping {
			total += item.Quantity
		}
	}
	return total
}

// Aggregate reduces items to the totals rate rules are evaluated against.
// A NaN or infinite weight or price counts as zero.
func Aggregate(items []Item) Totals {
	return Totals{
		Weight: TotalWeight(items),
		Price:  TotalPrice(items),
		Items:  TotalItems(items),
	}
}

func sumOf(items []Item, value func(Item) float64) float64 {
	sum := decimal.Zero
	for _, item := range items {
		if !item.RequiresShipping {
			continue
		}
		line := decimalOf(value(item)).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}
