package graphql

import (
	"errors"
	"sort"

	"github.com/tournevent/shiprate/internal/store"
	"github.com/tournevent/shiprate/pkg/shipping"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes set in extensions.code.
const (
	CodeStoreNotFound   = "STORE_NOT_FOUND"
	CodeInvalidStoreID  = "INVALID_STORE_ID"
	CodeInvalidSettings = "INVALID_SETTINGS"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL_ERROR"
)

func itemsInputToModel(inputs []*ItemInput) []shipping.Item {
	items := make([]shipping.Item, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		requiresShipping := true
		if in.RequiresShipping != nil {
			requiresShipping = *in.RequiresShipping
		}
		items = append(items, shipping.Item{
			Weight:           in.Weight,
			Quantity:         in.Quantity,
			Price:            in.Price,
			RequiresShipping: requiresShipping,
		})
	}
	return items
}

func addressInputToModel(in AddressInput) shipping.Address {
	return shipping.Address{
		Country:    in.Country,
		State:      deref(in.State),
		City:       deref(in.City),
		PostalCode: deref(in.PostalCode),
		Line1:      deref(in.Line1),
		Line2:      deref(in.Line2),
	}
}

func rateToGraphQL(r shipping.Rate) *ShippingRate {
	return &ShippingRate{
		ID:            r.ID,
		Name:          r.Name,
		Description:   optional(r.Description),
		Price:         r.Price,
		Currency:      r.Currency,
		EstimatedDays: r.EstimatedDays,
		Carrier:       optional(r.Carrier),
		Service:       optional(r.Service),
		Display:       shipping.FormatRate(r),
	}
}

func ratesToGraphQL(rates []shipping.Rate) []*ShippingRate {
	out := make([]*ShippingRate, len(rates))
	for i, r := range rates {
		out[i] = rateToGraphQL(r)
	}
	return out
}

func zoneToGraphQL(z shipping.Zone) *Zone {
	cfg := z.Config()
	zone := &Zone{
		ID:          cfg.ID,
		Name:        optional(cfg.Name),
		Countries:   cfg.Countries,
		States:      regionCodes(cfg.States),
		PostalCodes: regionCodes(cfg.PostalCodes),
		Rates:       make([]*RateRule, len(cfg.Rates)),
	}
	for i, rc := range cfg.Rates {
		zone.Rates[i] = &RateRule{
			ID:            rc.ID,
			Name:          rc.Name,
			Description:   optional(rc.Description),
			Type:          string(rc.Type),
			Price:         rc.Price,
			Conditions:    rc.Conditions,
			EstimatedDays: rc.EstimatedDays,
			Carrier:       optional(rc.Carrier),
			Service:       optional(rc.Service),
		}
	}
	return zone
}

// regionCodes flattens a per-country map into a list ordered by country.
func regionCodes(m map[string][]string) []*RegionCodes {
	out := make([]*RegionCodes, 0, len(m))
	for country, codes := range m {
		out = append(out, &RegionCodes{Country: country, Codes: codes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

// errorCode classifies a resolver error for extensions.code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrStoreNotFound):
		return CodeStoreNotFound
	case errors.Is(err, store.ErrInvalidStoreID):
		return CodeInvalidStoreID
	case errors.Is(err, store.ErrInvalidSettings):
		return CodeInvalidSettings
	case errors.Is(err, errBadRequest):
		return CodeBadRequest
	}
	return CodeInternal
}

// fieldError converts a resolver error into a GraphQL error at path.
// Internal errors are not described to the client.
func fieldError(path ast.Path, err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		if gqlErr.Path == nil {
			gqlErr.Path = path
		}
		return gqlErr
	}

	code := errorCode(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	return &gqlerror.Error{
		Message:    msg,
		Path:       path,
		Extensions: map[string]any{"code": code},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
