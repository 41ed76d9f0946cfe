package shipping_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/shiprate/pkg/shipping"
)

func TestConfigError_Error(t *testing.T) {
	err := shipping.NewConfigError(shipping.ErrInvalidZone, "eu", "at least one country is required").WithField("countries")
	assert.Equal(t, `zone "eu" field countries: invalid zone: at least one country is required`, err.Error())
}

func TestConfigError_ErrorWithRateAndCause(t *testing.T) {
	cause := errors.New("min 5 exceeds max 1")
	err := shipping.NewConfigError(shipping.ErrInvalidBounds, "eu", "bad range").
		WithRate("heavy").
		WithField("conditions.weight").
		WithCause(cause)

	assert.Equal(t, `zone "eu" rate "heavy" field conditions.weight: invalid bounds: bad range: min 5 exceeds max 1`, err.Error())
}

func TestConfigError_UnnamedZone(t *testing.T) {
	err := shipping.NewConfigError(shipping.ErrInvalidZone, "", "id is required")
	assert.Contains(t, err.Error(), "<unnamed>")
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := shipping.NewConfigError(shipping.ErrInvalidPattern, "eu", "bad country").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestConfigError_IsKind(t *testing.T) {
	err := shipping.NewConfigError(shipping.ErrInvalidBounds, "eu", "bad range")
	assert.True(t, errors.Is(err, shipping.ErrInvalidBounds))
	assert.False(t, errors.Is(err, shipping.ErrInvalidRate))
}

func TestConfigError_IsConfigError(t *testing.T) {
	err1 := shipping.NewConfigError(shipping.ErrInvalidRate, "eu", "name is required")
	err2 := shipping.NewConfigError(shipping.ErrInvalidRate, "us", "price must not be negative")
	err3 := shipping.NewConfigError(shipping.ErrInvalidZone, "us", "duplicate zone id")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidZone", shipping.ErrInvalidZone},
		{"ErrInvalidRate", shipping.ErrInvalidRate},
		{"ErrUnknownRateType", shipping.ErrUnknownRateType},
		{"ErrInvalidPattern", shipping.ErrInvalidPattern},
		{"ErrInvalidBounds", shipping.ErrInvalidBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
