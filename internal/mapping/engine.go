package mapping

import (
	"strings"

	"github.com/carrier-rates/backend/internal/models"
)

type category struct {
	name  string
	rules []Rule
}

// Engine evaluates an ordered rule table against CSV headers.
type Engine struct {
	categories []category
}

// NewEngine groups rules by category, keeping first-seen category order
// and rule order within each category.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{}
	for _, r := range rules {
		e.add(r, false)
	}
	return e
}

// NewDefaultEngine returns an engine over DefaultRules.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules())
}

func (e *Engine) add(r Rule, first bool) {
	for i := range e.categories {
		if e.categories[i].name == r.Category {
			if first {
				e.categories[i].rules = append([]Rule{r}, e.categories[i].rules...)
			} else {
				e.categories[i].rules = append(e.categories[i].rules, r)
			}
			return
		}
	}
	e.categories = append(e.categories, category{name: r.Category, rules: []Rule{r}})
}

// WithPack returns a copy of the engine with the pack's rules ahead of the
// built-in rules of the same category. Unknown categories are appended.
func (e *Engine) WithPack(pack *KeywordPack) *Engine {
	out := &Engine{categories: make([]category, len(e.categories))}
	for i, c := range e.categories {
		out.categories[i] = category{name: c.name, rules: append([]Rule(nil), c.rules...)}
	}
	// Reverse so the pack keeps its own order once prepended.
	for i := len(pack.Rules) - 1; i >= 0; i-- {
		out.add(pack.Rules[i], true)
	}
	return out
}

// Map scans headers in order. For each category the first matching rule
// assigns the header to its field; a later header matching the same field
// replaces the earlier one.
func (e *Engine) Map(headers []string) models.FieldMappings {
	var m models.FieldMappings
	for _, raw := range headers {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		h := newHeader(raw)
		for _, c := range e.categories {
			for _, r := range c.rules {
				if r.Matches(h) {
					m.Set(r.Field, raw)
					break
				}
			}
		}
	}
	return m
}

// Suggest proposes mappings plus starter structure and rules for a new
// template. sample may be nil or shorter than headers.
func (e *Engine) Suggest(headers []string, sample []string) *models.MappingSuggestion {
	m := e.Map(headers)

	structure := models.DefaultCSVStructure()
	structure.ExpectedColumns = append([]string{}, headers...)
	structure.RequiredColumns = requiredColumns(&m)

	rules := models.DefaultRateCalculationRules()
	rules.BaseUnit = inferBaseUnit(&m)
	if _, hasTotal := m.Column(models.FieldTotalRate); !hasTotal {
		if _, hasBase := m.Column(models.FieldBaseRate); hasBase {
			rules.CalculationType = models.CalculationPerUnit
		}
	}

	s := &models.MappingSuggestion{
		FieldMappings:        m,
		CSVStructure:         structure,
		RateCalculationRules: rules,
		ValidationRules:      suggestValidationRules(&m),
	}
	if len(sample) > 0 {
		row := make([]string, len(headers))
		copy(row, sample)
		s.SampleData = [][]string{row}
	}
	return s
}

func inferBaseUnit(m *models.FieldMappings) models.BaseUnit {
	if _, ok := m.Column(models.FieldSkidCount); ok {
		return models.BaseUnitSkid
	}
	if _, ok := m.Column(models.FieldLinearFeet); ok {
		return models.BaseUnitLF
	}
	for _, f := range []models.Field{models.FieldWeight, models.FieldWeightMin, models.FieldWeightMax} {
		if _, ok := m.Column(f); ok {
			return models.BaseUnitWeight
		}
	}
	return models.DefaultRateCalculationRules().BaseUnit
}

var essentialGroups = [][]models.Field{
	{models.FieldOrigin, models.FieldOriginCity, models.FieldOriginProvince},
	{models.FieldDestination, models.FieldDestinationCity, models.FieldDestinationProvince},
	{models.FieldBaseRate},
}

// requiredColumns marks the columns behind the essential fields.
func requiredColumns(m *models.FieldMappings) []string {
	cols := []string{}
	seen := map[string]bool{}
	for _, group := range essentialGroups {
		for _, f := range group {
			if col, ok := m.Column(f); ok && !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}

var numericFields = []models.Field{
	models.FieldWeightMin, models.FieldWeightMax, models.FieldWeight,
	models.FieldSkidCount, models.FieldLinearFeet, models.FieldCube, models.FieldPieces,
	models.FieldBaseRate, models.FieldFuelSurcharge, models.FieldFuelSurchargePct,
	models.FieldMinCharge, models.FieldAccessorials, models.FieldTotalRate,
	models.FieldTransitDays,
}

func suggestValidationRules(m *models.FieldMappings) models.ValidationRules {
	v := models.DefaultValidationRules()
	for _, f := range numericFields {
		if _, ok := m.Column(f); ok {
			v.NumericFields = append(v.NumericFields, f)
		}
	}
	for _, group := range essentialGroups {
		for _, f := range group {
			if _, ok := m.Column(f); ok {
				v.RequiredFields = append(v.RequiredFields, f)
			}
		}
	}
	return v
}
