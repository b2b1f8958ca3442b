package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carrier-rates/backend/internal/models"
)

// MemoryStore implements Store in process memory. A single lock makes the
// rate-card write and the usage increment one atomic step.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]*models.CarrierRateTemplate
	cards     map[string]*models.RateCard
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]*models.CarrierRateTemplate),
		cards:     make(map[string]*models.RateCard),
	}
}

// CreateTemplate stores a copy of t.
func (s *MemoryStore) CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[t.ID]; exists {
		return "", fmt.Errorf("template %s already exists", t.ID)
	}
	s.templates[t.ID] = t.Clone()

	return t.ID, nil
}

// GetTemplate returns a copy of the template with id.
func (s *MemoryStore) GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// ListTemplates returns the carrier's templates, most recently used first.
func (s *MemoryStore) ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.CarrierRateTemplate, 0)
	for _, t := range s.templates {
		if carrierID == "" || t.CarrierID == carrierID {
			list = append(list, t.Clone())
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return usedBefore(list[i], list[j])
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// usedBefore orders a ahead of b: used templates by last use descending,
// then never-used templates by creation descending.
func usedBefore(a, b *models.CarrierRateTemplate) bool {
	la, lb := a.Usage.LastUsedAt, b.Usage.LastUsedAt
	switch {
	case la != nil && lb != nil && !la.Equal(*lb):
		return la.After(*lb)
	case la != nil && lb == nil:
		return true
	case la == nil && lb != nil:
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// IncrementUsage adds inc.By to the template's import count.
func (s *MemoryStore) IncrementUsage(ctx context.Context, inc models.UsageIncrement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementLocked(inc)
}

func (s *MemoryStore) incrementLocked(inc models.UsageIncrement) error {
	t, ok := s.templates[inc.TemplateID]
	if !ok {
		return fmt.Errorf("template %s: %w", inc.TemplateID, ErrNotFound)
	}
	by := inc.By
	if by == 0 {
		by = 1
	}
	at := inc.LastUsedAt
	if at.IsZero() {
		at = time.Now()
	}
	t.Usage.ImportCount += by
	t.Usage.LastUsedAt = &at
	return nil
}

// CreateRateCard stores card and increments its template's usage under one
// lock.
func (s *MemoryStore) CreateRateCard(ctx context.Context, card *models.RateCard, inc models.UsageIncrement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if card.ID == "" {
		card.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; exists {
		return fmt.Errorf("rate card %s already exists", card.ID)
	}
	if err := s.incrementLocked(inc); err != nil {
		return err
	}
	s.cards[card.ID] = card.Clone()
	return nil
}

// GetRateCard returns a copy of the rate card with id.
func (s *MemoryStore) GetRateCard(ctx context.Context, id string) (*models.RateCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[id]
	if !ok {
		return nil, fmt.Errorf("rate card %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

// ListRateCards returns the template's rate cards newest first.
func (s *MemoryStore) ListRateCards(ctx context.Context, templateID string, limit int) ([]*models.RateCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.RateCard, 0)
	for _, c := range s.cards {
		if c.TemplateID == templateID {
			summary := *c
			summary.Records = nil
			list = append(list, &summary)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
