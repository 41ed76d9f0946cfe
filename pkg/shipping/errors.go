package shipping

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError describes an invalid zone or rate in a store's shipping configuration.
type ConfigError struct {
	Kind    error // one of the sentinel errors below
	ZoneID  string
	RateID  string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("zone ")
	b.WriteString(quoteID(e.ZoneID))
	if e.RateID != "" {
		b.WriteString(" rate ")
		b.WriteString(quoteID(e.RateID))
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	fmt.Fprintf(&b, ": %v: %s", e.Kind, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind, so errors.Is(err, ErrInvalidBounds) works
// without exposing the kind through Unwrap.
func (e *ConfigError) Is(target error) bool {
	if t, ok := target.(*ConfigError); ok {
		return e.Kind == t.Kind
	}
	return e.Kind == target
}

// NewConfigError creates a new ConfigError for a zone.
func NewConfigError(kind error, zoneID, message string) *ConfigError {
	return &ConfigError{
		Kind:    kind,
		ZoneID:  zoneID,
		Message: message,
	}
}

// WithRate attaches the offending rate ID.
func (e *ConfigError) WithRate(rateID string) *ConfigError {
	e.RateID = rateID
	return e
}

// WithField attaches the offending field name.
func (e *ConfigError) WithField(field string) *ConfigError {
	e.Field = field
	return e
}

// WithCause adds a cause to the error.
func (e *ConfigError) WithCause(err error) *ConfigError {
	e.Cause = err
	return e
}

func quoteID(id string) string {
	if id == "" {
		return "<unnamed>"
	}
	return fmt.Sprintf("%q", id)
}

// Sentinel errors for shipping configuration problems.
var (
	// ErrInvalidZone indicates a zone is missing required data or duplicates another.
	ErrInvalidZone = errors.New("invalid zone")

	// ErrInvalidRate indicates a rate rule is missing required data or has a negative price.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrUnknownRateType indicates a rate type outside the supported formulas.
	ErrUnknownRateType = errors.New("unknown rate type")

	// ErrInvalidPattern indicates a malformed country, state or postal code pattern.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidBounds indicates a min/max pair with min greater than max, or a negative bound.
	ErrInvalidBounds = errors.New("invalid bounds")
)
