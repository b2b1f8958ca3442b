package importer

import (
	"fmt"
	"strings"

	"github.com/carrier-rates/backend/internal/models"
)

// checkTemplate rejects definitions that could never be imported through.
// Mapped columns are not checked against expectedColumns here; a template
// may be saved before its first file is matched.
func checkTemplate(t *models.CarrierRateTemplate) error {
	var problems []string
	if strings.TrimSpace(t.CarrierID) == "" {
		problems = append(problems, "carrierId is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "name is required")
	}

	r := t.RateCalculationRules
	switch r.CalculationType {
	case "", models.CalculationExplicit, models.CalculationPerUnit:
	default:
		problems = append(problems, fmt.Sprintf("unknown calculationType %q", r.CalculationType))
	}
	switch r.BaseUnit {
	case "", models.BaseUnitWeight, models.BaseUnitSkid, models.BaseUnitLF, models.BaseUnitCube:
	default:
		problems = append(problems, fmt.Sprintf("unknown baseUnit %q", r.BaseUnit))
	}
	switch r.WeightCalculation.Method {
	case "", models.WeightPerLb, models.WeightPer100Lbs, models.WeightFlatRate:
	default:
		problems = append(problems, fmt.Sprintf("unknown weight method %q", r.WeightCalculation.Method))
	}
	switch r.WeightCalculation.RoundingRule {
	case "", models.RoundingNone, models.RoundingUp, models.RoundingDown, models.RoundingNearest:
	default:
		problems = append(problems, fmt.Sprintf("unknown roundingRule %q", r.WeightCalculation.RoundingRule))
	}
	switch r.FuelSurcharge.ApplyTo {
	case "", models.FuelOnBaseRate, models.FuelOnTotalRate:
	default:
		problems = append(problems, fmt.Sprintf("unknown fuel applyTo %q", r.FuelSurcharge.ApplyTo))
	}
	if r.UnitMultiplier < 0 {
		problems = append(problems, "unitMultiplier must not be negative")
	}

	s := t.CSVStructure
	if s.HeaderRowIndex < 0 || s.DataStartRow < 0 {
		problems = append(problems, "row indexes must not be negative")
	}
	if len([]rune(s.Delimiter)) > 1 && s.Delimiter != "tab" && s.Delimiter != `\t` {
		problems = append(problems, fmt.Sprintf("delimiter %q must be a single character", s.Delimiter))
	}

	v := t.ValidationRules
	for _, f := range append(append([]models.Field{}, v.RequiredFields...), v.NumericFields...) {
		if !f.IsKnown() {
			problems = append(problems, fmt.Sprintf("unknown validation field %q", f))
		}
	}
	for f := range v.Ranges {
		if !f.IsKnown() {
			problems = append(problems, fmt.Sprintf("unknown range field %q", f))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(problems, "; "))
	}
	return nil
}
