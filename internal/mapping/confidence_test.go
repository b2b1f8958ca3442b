package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carrier-rates/backend/internal/models"
)

func mappingsFor(fields ...models.Field) *models.FieldMappings {
	var m models.FieldMappings
	for _, f := range fields {
		m.Set(f, string(f))
	}
	return &m
}

func templates(n int) []*models.CarrierRateTemplate {
	out := make([]*models.CarrierRateTemplate, n)
	for i := range out {
		out[i] = &models.CarrierRateTemplate{}
	}
	return out
}

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name     string
		mappings *models.FieldMappings
		existing int
		want     float64
		bonus    float64
		penalty  float64
	}{
		{
			name:     "nothing mapped",
			mappings: mappingsFor(),
			want:     0,
		},
		{
			name:     "city variants count as origin",
			mappings: mappingsFor(models.FieldOriginCity, models.FieldDestination, models.FieldBaseRate),
			want:     50,
			bonus:    30,
		},
		{
			name:     "province variant counts as destination",
			mappings: mappingsFor(models.FieldOrigin, models.FieldDestinationProvince, models.FieldBaseRate),
			want:     50,
			bonus:    30,
		},
		{
			name:     "postal does not count as origin",
			mappings: mappingsFor(models.FieldOriginPostal),
			want:     6.67,
		},
		{
			name:     "total rate does not substitute base rate",
			mappings: mappingsFor(models.FieldTotalRate),
			want:     6.67,
		},
		{
			name:     "existing templates penalize",
			mappings: mappingsFor(models.FieldOriginCity, models.FieldDestination, models.FieldBaseRate),
			existing: 2,
			want:     40,
			bonus:    30,
			penalty:  10,
		},
		{
			name:     "penalty caps at 20",
			mappings: mappingsFor(models.FieldOriginCity, models.FieldDestination, models.FieldBaseRate),
			existing: 10,
			want:     30,
			bonus:    30,
			penalty:  20,
		},
		{
			name:     "clamped at zero",
			mappings: mappingsFor(),
			existing: 5,
			want:     0,
			penalty:  20,
		},
		{
			name:     "clamped at 100",
			mappings: mappingsFor(models.AllFields...),
			want:     100,
			bonus:    30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreConfidence(tt.mappings, templates(tt.existing))
			assert.InDelta(t, tt.want, got.Overall, 0.001)
			assert.Equal(t, tt.bonus, got.EssentialBonus)
			assert.Equal(t, tt.penalty, got.ExistingPenalty)
			assert.Equal(t, tt.existing, got.ExistingCount)
		})
	}
}

func TestScoreConfidenceAlwaysInRange(t *testing.T) {
	for n := 0; n <= len(models.AllFields); n++ {
		for existing := 0; existing <= 12; existing++ {
			got := ScoreConfidence(mappingsFor(models.AllFields[:n]...), templates(existing))
			if got.Overall < 0 || got.Overall > 100 {
				t.Fatalf("fields=%d existing=%d: score %v out of range", n, existing, got.Overall)
			}
		}
	}
}
