package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tournevent/shiprate/internal/store"
	"github.com/tournevent/shiprate/internal/telemetry"
	"github.com/tournevent/shiprate/pkg/shipping"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Registry *store.Registry
	Logger   *otelzap.Logger
	Metrics  *telemetry.Metrics
	Tracer   trace.Tracer
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(registry *store.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics, tracer trace.Tracer) *Resolver {
	return &Resolver{
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
		Tracer:   tracer,
	}
}

// Query returns the Query resolver.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// Mutation returns the Mutation resolver.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

type queryResolver struct{ *Resolver }

func (r *queryResolver) Health(ctx context.Context) (bool, error) {
	return true, nil
}

func (r *queryResolver) ShippingRates(ctx context.Context, storeID string, items []*ItemInput, address AddressInput) (*ShippingRatesResult, error) {
	requestID := uuid.NewString()
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("request.id", requestID),
		attribute.String("store.id", storeID),
		attribute.String("address.country", address.Country),
		attribute.Int("items.count", len(items)),
	)

	cart := itemsInputToModel(items)
	for i, it := range cart {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", errBadRequest, i, err)
		}
	}

	calc, err := r.calculator(ctx, storeID)
	if err != nil {
		return nil, err
	}

	quote := calc.Quote(cart, addressInputToModel(address))
	r.Metrics.RecordQuote(string(quote.Outcome), len(quote.Rates))

	result := &ShippingRatesResult{
		RequestID: requestID,
		StoreID:   storeID,
		Currency:  calc.Currency(),
		Outcome:   string(quote.Outcome),
		Rates:     ratesToGraphQL(quote.Rates),
	}
	if quote.Zone != nil {
		result.ZoneID = &quote.Zone.ID
		span.SetAttributes(attribute.String("zone.id", quote.Zone.ID))
	}

	r.Logger.Ctx(ctx).Info("Calculated shipping rates",
		zap.String("request_id", requestID),
		zap.String("store_id", storeID),
		zap.String("country", address.Country),
		zap.String("outcome", string(quote.Outcome)),
		zap.Int("rates", len(quote.Rates)),
		zap.Float64("total_weight", quote.Totals.Weight),
		zap.Float64("total_price", quote.Totals.Price),
	)
	return result, nil
}

func (r *queryResolver) ValidateAddress(ctx context.Context, address AddressInput) (*shipping.AddressValidation, error) {
	v := shipping.ValidateAddress(addressInputToModel(address))
	return &v, nil
}

func (r *queryResolver) ShippingZones(ctx context.Context, storeID string) (*ShippingZonesResult, error) {
	calc, err := r.calculator(ctx, storeID)
	if err != nil {
		return nil, err
	}

	source := calc.Source()
	zones := source.Zones()
	result := &ShippingZonesResult{
		StoreID:       storeID,
		Currency:      calc.Currency(),
		WeightUnit:    string(calc.WeightUnit()),
		UsingDefaults: source.IsDefault(),
		Zones:         make([]*Zone, len(zones)),
	}
	for i, z := range zones {
		result.Zones[i] = zoneToGraphQL(z)
	}
	return result, nil
}

// calculator fetches the store's calculator and records load failures.
func (r *Resolver) calculator(ctx context.Context, storeID string) (*shipping.Calculator, error) {
	calc, err := r.Registry.Calculator(ctx, storeID)
	if err == nil {
		return calc, nil
	}

	switch code := errorCode(err); code {
	case CodeStoreNotFound:
		r.Metrics.RecordSettingsError("not_found")
		r.Logger.Ctx(ctx).Info("Unknown store", zap.String("store_id", storeID))
	case CodeInvalidStoreID:
		r.Metrics.RecordSettingsError("invalid_id")
	case CodeInvalidSettings:
		r.Metrics.RecordSettingsError("invalid")
		r.Logger.Ctx(ctx).Error("Store settings are invalid", zap.String("store_id", storeID), zap.Error(err))
	default:
		r.Metrics.RecordSettingsError("unavailable")
		r.Logger.Ctx(ctx).Error("Failed to load store settings", zap.String("store_id", storeID), zap.Error(err))
	}
	return nil, err
}

type mutationResolver struct{ *Resolver }

func (r *mutationResolver) InvalidateStore(ctx context.Context, storeID string) (bool, error) {
	id, err := store.NormalizeStoreID(storeID)
	if err != nil {
		return false, err
	}
	r.Registry.Invalidate(id)
	r.Logger.Ctx(ctx).Info("Invalidated store calculator", zap.String("store_id", id))
	return true, nil
}
