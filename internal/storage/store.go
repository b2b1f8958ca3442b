// Package storage persists carrier templates and the rate cards imported
// through them.
package storage

import (
	"context"
	"errors"

	"github.com/carrier-rates/backend/internal/models"
)

// ErrNotFound is returned when a template or rate card does not exist.
var ErrNotFound = errors.New("not found")

// TemplateStore persists carrier rate templates.
type TemplateStore interface {
	// CreateTemplate stores t and returns its id. An empty t.ID is assigned.
	CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (string, error)
	GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error)
	// ListTemplates returns templates for carrierID (all carriers when empty),
	// most recently used first, then newest first. limit <= 0 means no limit.
	ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error)
	// IncrementUsage adds inc.By to the import count. It never overwrites
	// the count with a cached value.
	IncrementUsage(ctx context.Context, inc models.UsageIncrement) error
}

// RateCardStore persists imported rate cards.
type RateCardStore interface {
	// CreateRateCard stores card and applies inc to its template in one
	// atomic write. Neither change is visible if either fails.
	CreateRateCard(ctx context.Context, card *models.RateCard, inc models.UsageIncrement) error
	GetRateCard(ctx context.Context, id string) (*models.RateCard, error)
	// ListRateCards returns cards for templateID newest first, without their
	// records.
	ListRateCards(ctx context.Context, templateID string, limit int) ([]*models.RateCard, error)
}

// Store is the full persistence surface used by the importer.
type Store interface {
	TemplateStore
	RateCardStore
	Close() error
}
