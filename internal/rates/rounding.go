package rates

import (
	"github.com/shopspring/decimal"

	"github.com/carrier-rates/backend/internal/models"
)

// RoundQuantity rounds qty to a multiple of increment according to rule.
// RoundingNone, an unknown rule or a non-positive increment return qty
// unchanged.
func RoundQuantity(qty float64, rule models.RoundingRule, increment float64) float64 {
	if increment <= 0 {
		return qty
	}
	inc := decimal.NewFromFloat(increment)
	steps := decimal.NewFromFloat(qty).Div(inc)

	switch rule {
	case models.RoundingUp:
		steps = steps.Ceil()
	case models.RoundingDown:
		steps = steps.Floor()
	case models.RoundingNearest:
		steps = steps.Round(0)
	default:
		return qty
	}
	return steps.Mul(inc).InexactFloat64()
}
