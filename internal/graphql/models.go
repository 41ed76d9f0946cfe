package graphql

import (
	"context"

	"github.com/tournevent/shiprate/pkg/shipping"
)

// QueryResolver resolves the root Query fields.
type QueryResolver interface {
	Health(ctx context.Context) (bool, error)
	ShippingRates(ctx context.Context, storeID string, items []*ItemInput, address AddressInput) (*ShippingRatesResult, error)
	ValidateAddress(ctx context.Context, address AddressInput) (*shipping.AddressValidation, error)
	ShippingZones(ctx context.Context, storeID string) (*ShippingZonesResult, error)
}

// MutationResolver resolves the root Mutation fields.
type MutationResolver interface {
	InvalidateStore(ctx context.Context, storeID string) (bool, error)
}

type ItemInput struct {
	Weight           float64 `json:"weight"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	RequiresShipping *bool   `json:"requiresShipping,omitempty"`
}

type AddressInput struct {
	Country    string  `json:"country"`
	State      *string `json:"state,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
}

type ShippingRate struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Description   *string                 `json:"description"`
	Price         float64                 `json:"price"`
	Currency      string                  `json:"currency"`
	EstimatedDays shipping.DeliveryWindow `json:"estimatedDays"`
	Carrier       *string                 `json:"carrier"`
	Service       *string                 `json:"service"`
	Display       string                  `json:"display"`
}

type ShippingRatesResult struct {
	RequestID string          `json:"requestId"`
	StoreID   string          `json:"storeId"`
	Currency  string          `json:"currency"`
	ZoneID    *string         `json:"zoneId"`
	Outcome   string          `json:"outcome"`
	Rates     []*ShippingRate `json:"rates"`
}

type RegionCodes struct {
	Country string   `json:"country"`
	Codes   []string `json:"codes"`
}

type RateRule struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Description   *string                    `json:"description"`
	Type          string                     `json:"type"`
	Price         float64                    `json:"price"`
	Conditions    *shipping.ConditionsConfig `json:"conditions"`
	EstimatedDays shipping.DeliveryWindow    `json:"estimatedDays"`
	Carrier       *string                    `json:"carrier"`
	Service       *string                    `json:"service"`
}

type Zone struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Countries   []string       `json:"countries"`
	States      []*RegionCodes `json:"states"`
	PostalCodes []*RegionCodes `json:"postalCodes"`
	Rates       []*RateRule    `json:"rates"`
}

type ShippingZonesResult struct {
	StoreID       string  `json:"storeId"`
	Currency      string  `json:"currency"`
	WeightUnit    string  `json:"weightUnit"`
	UsingDefaults bool    `json:"usingDefaults"`
	Zones         []*Zone `json:"zones"`
}
