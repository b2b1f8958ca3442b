package mapping

import (
	"strings"

	"github.com/carrier-rates/backend/internal/models"
)

// Rule maps a header to a logical field. Every group in Match must have at
// least one keyword present in the header, and no Exclude keyword may be.
type Rule struct {
	Category string       `yaml:"category"`
	Field    models.Field `yaml:"field"`
	Match    [][]string   `yaml:"match"`
	Exclude  []string     `yaml:"exclude,omitempty"`
}

// Matches reports whether the rule applies to a header.
func (r Rule) Matches(h header) bool {
	if len(r.Match) == 0 {
		return false
	}
	for _, kw := range r.Exclude {
		if h.contains(kw) {
			return false
		}
	}
	for _, group := range r.Match {
		if !h.containsAny(group) {
			return false
		}
	}
	return true
}

// header carries both forms a keyword can match against. Symbols such as
// "%" vanish under normalization, so they are looked up in the raw form.
type header struct {
	raw        string
	lower      string
	normalized string
}

func newHeader(raw string) header {
	return header{
		raw:        raw,
		lower:      strings.ToLower(raw),
		normalized: NormalizeHeader(raw),
	}
}

func (h header) contains(keyword string) bool {
	if nk := NormalizeHeader(keyword); nk != "" {
		return strings.Contains(h.normalized, nk)
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	return kw != "" && strings.Contains(h.lower, kw)
}

func (h header) containsAny(keywords []string) bool {
	for _, kw := range keywords {
		if h.contains(kw) {
			return true
		}
	}
	return false
}

const (
	CategoryGeography = "geography"
	CategoryWeight    = "weight"
	CategoryRate      = "rate"
	CategoryFuel      = "fuel"
	CategoryService   = "service"
	CategoryTransit   = "transit"
	CategorySkid      = "skid"
	CategoryLinear    = "linear"
)

var (
	originKeywords      = []string{"origin", "from"}
	destinationKeywords = []string{"destination", "dest", "to"}
	rateKeywords        = []string{"rate", "price", "cost"}
)

// DefaultRules is the built-in keyword table. Within a category the more
// specific rules come first.
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategoryGeography, Field: models.FieldOriginCity, Match: [][]string{originKeywords, {"city"}}},
		{Category: CategoryGeography, Field: models.FieldOriginProvince, Match: [][]string{originKeywords, {"province", "state"}}},
		{Category: CategoryGeography, Field: models.FieldOriginPostal, Match: [][]string{originKeywords, {"postal", "zip"}}},
		{Category: CategoryGeography, Field: models.FieldOrigin, Match: [][]string{originKeywords}},
		// "to" also appears inside "total".
		{Category: CategoryGeography, Field: models.FieldDestinationCity, Match: [][]string{destinationKeywords, {"city"}}, Exclude: []string{"total"}},
		{Category: CategoryGeography, Field: models.FieldDestinationProvince, Match: [][]string{destinationKeywords, {"province", "state"}}, Exclude: []string{"total"}},
		{Category: CategoryGeography, Field: models.FieldDestinationPostal, Match: [][]string{destinationKeywords, {"postal", "zip"}}, Exclude: []string{"total"}},
		{Category: CategoryGeography, Field: models.FieldDestination, Match: [][]string{destinationKeywords}, Exclude: []string{"total"}},

		{Category: CategoryWeight, Field: models.FieldWeightMin, Match: [][]string{{"weight"}, {"min"}}},
		{Category: CategoryWeight, Field: models.FieldWeightMax, Match: [][]string{{"weight"}, {"max"}}},
		{Category: CategoryWeight, Field: models.FieldWeight, Match: [][]string{{"weight"}}},

		{Category: CategoryRate, Field: models.FieldBaseRate, Match: [][]string{rateKeywords, {"base", "linehaul"}}, Exclude: []string{"fuel"}},
		{Category: CategoryRate, Field: models.FieldMinCharge, Match: [][]string{rateKeywords, {"min"}}, Exclude: []string{"fuel"}},
		{Category: CategoryRate, Field: models.FieldTotalRate, Match: [][]string{rateKeywords, {"total"}}, Exclude: []string{"fuel"}},
		{Category: CategoryRate, Field: models.FieldBaseRate, Match: [][]string{rateKeywords}, Exclude: []string{"fuel"}},

		{Category: CategoryFuel, Field: models.FieldFuelSurchargePct, Match: [][]string{{"fuel"}, {"pct", "percent", "%"}}},
		{Category: CategoryFuel, Field: models.FieldFuelSurcharge, Match: [][]string{{"fuel"}}},

		{Category: CategoryService, Field: models.FieldServiceLevel, Match: [][]string{{"service", "level"}}},
		{Category: CategoryTransit, Field: models.FieldTransitDays, Match: [][]string{{"transit", "days", "time"}}},
		{Category: CategorySkid, Field: models.FieldSkidCount, Match: [][]string{{"skid", "pallet"}}},
		{Category: CategoryLinear, Field: models.FieldLinearFeet, Match: [][]string{{"linear", "lf", "feet"}}},
	}
}
