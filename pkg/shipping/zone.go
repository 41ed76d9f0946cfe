package shipping

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// MatchKind is the variant of a Pattern.
type MatchKind int

const (
	// MatchAny matches every value.
	MatchAny MatchKind = iota
	// MatchExact matches one value.
	MatchExact
	// MatchPrefix matches values starting with a prefix.
	MatchPrefix
)

// Pattern matches country, state or postal codes.
type Pattern struct {
	Kind  MatchKind
	Value string
}

// Any returns a pattern matching every value.
func Any() Pattern {
	return Pattern{Kind: MatchAny}
}

// Exactly returns a pattern matching code only.
func Exactly(code string) Pattern {
	return Pattern{Kind: MatchExact, Value: normalizeCode(code)}
}

// Prefix returns a pattern matching codes starting with prefix.
func Prefix(prefix string) Pattern {
	return Pattern{Kind: MatchPrefix, Value: normalizeCode(prefix)}
}

// ParseCodePattern parses a country or state pattern: "*" or an exact code.
func ParseCodePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == wildcard:
		return Any(), nil
	case s == "":
		return Pattern{}, fmt.Errorf("%w: empty code", ErrInvalidPattern)
	case strings.Contains(s, wildcard):
		return Pattern{}, fmt.Errorf("%w: %q: wildcard must stand alone", ErrInvalidPattern, s)
	}
	return Exactly(s), nil
}

// ParsePostalPattern parses a postal code pattern: "*", an exact code,
// or a prefix with a single trailing "*" such as "90*".
func ParsePostalPattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == wildcard:
		return Any(), nil
	case s == "":
		return Pattern{}, fmt.Errorf("%w: empty postal code", ErrInvalidPattern)
	}

	body, isPrefix := strings.CutSuffix(s, wildcard)
	if strings.Contains(body, wildcard) {
		return Pattern{}, fmt.Errorf("%w: %q: only a single trailing wildcard is supported", ErrInvalidPattern, s)
	}
	if isPrefix {
		return Prefix(body), nil
	}
	return Exactly(body), nil
}

// Match reports whether v satisfies the pattern.
func (p Pattern) Match(v string) bool {
	switch p.Kind {
	case MatchAny:
		return true
	case MatchExact:
		return normalizeCode(v) == p.Value
	case MatchPrefix:
		return strings.HasPrefix(normalizeCode(v), p.Value)
	}
	return false
}

// String returns the configuration form of the pattern.
func (p Pattern) String() string {
	switch p.Kind {
	case MatchAny:
		return wildcard
	case MatchPrefix:
		return p.Value + wildcard
	}
	return p.Value
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func matchAny(patterns []Pattern, v string) bool {
	for _, p := range patterns {
		if p.Match(v) {
			return true
		}
	}
	return false
}

// Zone groups destinations that share the same shipping options.
type Zone struct {
	ID          string
	Name        string
	Countries   []Pattern
	States      map[string][]Pattern // keyed by upper-case country code
	PostalCodes map[string][]Pattern // keyed by upper-case country code
	Rates       []RateRule
}

// Matches reports whether the zone covers addr.
// State and postal checks only apply when the zone restricts the address
// country and the address carries a value.
func (z *Zone) Matches(addr Address) bool {
	if !matchAny(z.Countries, addr.Country) {
		return false
	}

	country := normalizeCode(addr.Country)
	if states, ok := z.States[country]; ok && strings.TrimSpace(addr.State) != "" {
		if !matchAny(states, addr.State) {
			return false
		}
	}
	if codes, ok := z.PostalCodes[country]; ok && strings.TrimSpace(addr.PostalCode) != "" {
		if !matchAny(codes, addr.PostalCode) {
			return false
		}
	}
	return true
}

// FindApplicableZone returns the first zone covering addr, or nil.
func FindApplicableZone(zones []Zone, addr Address) *Zone {
	for i := range zones {
		if zones[i].Matches(addr) {
			return &zones[i]
		}
	}
	return nil
}
