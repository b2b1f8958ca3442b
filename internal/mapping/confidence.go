package mapping

import (
	"math"

	"github.com/carrier-rates/backend/internal/models"
)

const (
	// coverageTarget is the mapped-field count that earns full coverage.
	coverageTarget     = 15
	essentialBonus     = 10
	perTemplatePenalty = 5
	maxExistingPenalty = 20
)

// ScoreConfidence rates suggested mappings from 0 to 100. existing are the
// carrier's most recently used templates; each one lowers the score since
// the operator may be duplicating a format that is already set up.
func ScoreConfidence(m *models.FieldMappings, existing []*models.CarrierRateTemplate) models.ConfidenceScore {
	mapped := m.Count()
	coverage := math.Min(float64(mapped)/coverageTarget, 1) * 100

	bonus := 0.0
	for _, group := range essentialGroups {
		for _, f := range group {
			if _, ok := m.Column(f); ok {
				bonus += essentialBonus
				break
			}
		}
	}

	penalty := math.Min(float64(perTemplatePenalty*len(existing)), maxExistingPenalty)

	overall := coverage + bonus - penalty
	overall = math.Max(0, math.Min(100, overall))

	return models.ConfidenceScore{
		Overall:         math.Round(overall*100) / 100,
		Coverage:        math.Round(coverage*100) / 100,
		EssentialBonus:  bonus,
		ExistingPenalty: penalty,
		MappedFields:    mapped,
		ExistingCount:   len(existing),
	}
}
