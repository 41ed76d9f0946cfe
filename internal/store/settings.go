// Package store loads per-store shipping settings and keeps one rate
// calculator per store.
package store

import (
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tournevent/shiprate/pkg/shipping"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// Settings is a store's settings record, reduced to what shipping needs.
type Settings struct {
	StoreID    string              `json:"storeId" yaml:"storeId"`
	Currency   string              `json:"currency" yaml:"currency"`
	Country    string              `json:"country" yaml:"country"`
	WeightUnit shipping.WeightUnit `json:"weightUnit" yaml:"weightUnit"`
	Shipping   ShippingSettings    `json:"shipping" yaml:"shipping"`
}

// ShippingSettings holds the shipping section of a settings record.
// Zones own their rates, so removing a zone removes its rates.
type ShippingSettings struct {
	Zones []shipping.ZoneConfig `json:"zones" yaml:"zones"`
}

// Defaults fill in settings a store left empty.
type Defaults struct {
	Currency   string
	Country    string
	WeightUnit shipping.WeightUnit
}

// ApplyDefaults fills empty fields from d.
func (s *Settings) ApplyDefaults(d Defaults) {
	if s.Currency == "" {
		s.Currency = d.Currency
	}
	if s.Country == "" {
		s.Country = d.Country
	}
	if s.WeightUnit == "" {
		s.WeightUnit = d.WeightUnit
	}
}

// Validate checks the store-level fields. Zones are validated by Calculator.
func (s *Settings) Validate() error {
	if _, err := currency.ParseISO(s.Currency); err != nil {
		return fmt.Errorf("%w: currency %q: %v", ErrInvalidSettings, s.Currency, err)
	}
	if len(strings.TrimSpace(s.Country)) != 2 {
		return fmt.Errorf("%w: country %q must be a 2-letter code", ErrInvalidSettings, s.Country)
	}
	if !s.WeightUnit.Valid() {
		return fmt.Errorf("%w: unknown weight unit %q", ErrInvalidSettings, s.WeightUnit)
	}
	return nil
}

// Calculator validates the settings and builds the store's rate calculator.
func (s *Settings) Calculator() (*shipping.Calculator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	zones, err := shipping.CompileZones(s.Shipping.Zones)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	source := shipping.SourceFor(zones, strings.ToUpper(strings.TrimSpace(s.Country)))
	return shipping.NewCalculator(source, s.Currency, shipping.WithWeightUnit(s.WeightUnit)), nil
}

// Format is the encoding of a settings document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Decode parses a settings document.
func Decode(data []byte, format Format) (*Settings, error) {
	var s Settings
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidSettings, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrInvalidSettings, format, err)
	}
	return &s, nil
}

// Encode renders settings in the given format.
func Encode(s *Settings, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
