package shipping

import (
	"strings"
)

// ZoneConfig is the stored form of a zone inside a store's settings record.
type ZoneConfig struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Countries   []string            `json:"countries" yaml:"countries"`
	States      map[string][]string `json:"states,omitempty" yaml:"states,omitempty"`
	PostalCodes map[string][]string `json:"postalCodes,omitempty" yaml:"postalCodes,omitempty"`
	Rates       []RateConfig        `json:"rates" yaml:"rates"`
}

// RateConfig is the stored form of a rate rule.
type RateConfig struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type          RateType          `json:"type" yaml:"type"`
	Price         float64           `json:"price" yaml:"price"`
	Conditions    *ConditionsConfig `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	EstimatedDays DeliveryWindow    `json:"estimatedDays" yaml:"estimatedDays"`
	Carrier       string            `json:"carrier,omitempty" yaml:"carrier,omitempty"`
	Service       string            `json:"service,omitempty" yaml:"service,omitempty"`
}

// ConditionsConfig is the stored form of rate conditions.
type ConditionsConfig struct {
	MinWeight *float64 `json:"minWeight,omitempty" yaml:"minWeight,omitempty"`
	MaxWeight *float64 `json:"maxWeight,omitempty" yaml:"maxWeight,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty" yaml:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty" yaml:"maxPrice,omitempty"`
	MinItems  *int     `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems  *int     `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
}

// CompileZones validates stored zones and converts them, keeping their order.
func CompileZones(configs []ZoneConfig) ([]Zone, error) {
	zones := make([]Zone, 0, len(configs))
	seen := make(map[string]struct{}, len(configs))
	for _, zc := range configs {
		if _, dup := seen[zc.ID]; dup {
			return nil, NewConfigError(ErrInvalidZone, zc.ID, "duplicate zone id").WithField("id")
		}
		seen[zc.ID] = struct{}{}

		zone, err := zc.Compile()
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, nil
}

// Compile validates the zone and converts it to its typed form.
func (zc ZoneConfig) Compile() (Zone, error) {
	if strings.TrimSpace(zc.ID) == "" {
		return Zone{}, NewConfigError(ErrInvalidZone, zc.ID, "id is required").WithField("id")
	}
	if len(zc.Countries) == 0 {
		return Zone{}, NewConfigError(ErrInvalidZone, zc.ID, "at least one country is required").WithField("countries")
	}

	zone := Zone{ID: zc.ID, Name: zc.Name}

	for _, c := range zc.Countries {
		p, err := ParseCodePattern(c)
		if err != nil {
			return Zone{}, NewConfigError(ErrInvalidPattern, zc.ID, "bad country").WithField("countries").WithCause(err)
		}
		zone.Countries = append(zone.Countries, p)
	}

	states, err := compilePatternMap(zc.States, ParseCodePattern)
	if err != nil {
		return Zone{}, NewConfigError(ErrInvalidPattern, zc.ID, "bad state").WithField("states").WithCause(err)
	}
	zone.States = states

	postal, err := compilePatternMap(zc.PostalCodes, ParsePostalPattern)
	if err != nil {
		return Zone{}, NewConfigError(ErrInvalidPattern, zc.ID, "bad postal code").WithField("postalCodes").WithCause(err)
	}
	zone.PostalCodes = postal

	seen := make(map[string]struct{}, len(zc.Rates))
	for _, rc := range zc.Rates {
		if _, dup := seen[rc.ID]; dup {
			return Zone{}, NewConfigError(ErrInvalidRate, zc.ID, "duplicate rate id").WithRate(rc.ID).WithField("id")
		}
		seen[rc.ID] = struct{}{}

		rule, err := rc.compile(zc.ID)
		if err != nil {
			return Zone{}, err
		}
		zone.Rates = append(zone.Rates, rule)
	}
	return zone, nil
}

func compilePatternMap(in map[string][]string, parse func(string) (Pattern, error)) (map[string][]Pattern, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string][]Pattern, len(in))
	for country, codes := range in {
		key := normalizeCode(country)
		for _, code := range codes {
			p, err := parse(code)
			if err != nil {
				return nil, err
			}
			out[key] = append(out[key], p)
		}
	}
	return out, nil
}

func (rc RateConfig) compile(zoneID string) (RateRule, error) {
	cfgErr := func(kind error, field, msg string) *ConfigError {
		return NewConfigError(kind, zoneID, msg).WithRate(rc.ID).WithField(field)
	}

	if strings.TrimSpace(rc.ID) == "" {
		return RateRule{}, cfgErr(ErrInvalidRate, "id", "id is required")
	}
	if strings.TrimSpace(rc.Name) == "" {
		return RateRule{}, cfgErr(ErrInvalidRate, "name", "name is required")
	}
	if !finite(rc.Price) || rc.Price < 0 {
		return RateRule{}, cfgErr(ErrInvalidRate, "price", "price must be a non-negative number")
	}

	pricing, err := NewPricing(rc.Type, rc.Price)
	if err != nil {
		return RateRule{}, cfgErr(ErrUnknownRateType, "type", "unsupported formula").WithCause(err)
	}

	days := rc.EstimatedDays
	if days.Min < 0 || days.Max < 0 || days.Min > days.Max {
		return RateRule{}, cfgErr(ErrInvalidBounds, "estimatedDays", "min must be between 0 and max")
	}

	conds := rc.Conditions.compile()
	ranges := []struct {
		field string
		r     Range
	}{
		{"conditions.weight", conds.Weight},
		{"conditions.price", conds.Price},
		{"conditions.items", conds.Items},
	}
	for _, fr := range ranges {
		if err := fr.r.validate(); err != nil {
			return RateRule{}, cfgErr(ErrInvalidBounds, fr.field, "bad range").WithCause(err)
		}
	}

	return RateRule{
		ID:            rc.ID,
		Name:          rc.Name,
		Description:   rc.Description,
		Pricing:       pricing,
		Conditions:    conds,
		EstimatedDays: days,
		Carrier:       rc.Carrier,
		Service:       rc.Service,
	}, nil
}

func (cc *ConditionsConfig) compile() Conditions {
	if cc == nil {
		return Conditions{}
	}
	return Conditions{
		Weight: Range{Min: cc.MinWeight, Max: cc.MaxWeight},
		Price:  Range{Min: cc.MinPrice, Max: cc.MaxPrice},
		Items:  Range{Min: intToFloat(cc.MinItems), Max: intToFloat(cc.MaxItems)},
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func floatToInt(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

// Config converts a zone back to its stored form.
func (z Zone) Config() ZoneConfig {
	zc := ZoneConfig{
		ID:          z.ID,
		Name:        z.Name,
		Countries:   patternStrings(z.Countries),
		States:      patternMapStrings(z.States),
		PostalCodes: patternMapStrings(z.PostalCodes),
		Rates:       make([]RateConfig, 0, len(z.Rates)),
	}
	for _, r := range z.Rates {
		zc.Rates = append(zc.Rates, r.Config())
	}
	return zc
}

// Config converts a rule back to its stored form.
func (r RateRule) Config() RateConfig {
	rc := RateConfig{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Type:          r.Pricing.Type(),
		Price:         r.Pricing.Base(),
		EstimatedDays: r.EstimatedDays,
		Carrier:       r.Carrier,
		Service:       r.Service,
	}
	c := r.Conditions
	if !c.Weight.IsZero() || !c.Price.IsZero() || !c.Items.IsZero() {
		rc.Conditions = &ConditionsConfig{
			MinWeight: c.Weight.Min,
			MaxWeight: c.Weight.Max,
			MinPrice:  c.Price.Min,
			MaxPrice:  c.Price.Max,
			MinItems:  floatToInt(c.Items.Min),
			MaxItems:  floatToInt(c.Items.Max),
		}
	}
	return rc
}

func patternStrings(ps []Pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func patternMapStrings(m map[string][]Pattern) map[string][]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, ps := range m {
		out[k] = patternStrings(ps)
	}
	return out
}
