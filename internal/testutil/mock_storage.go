// mock_storage.go - Mock store with failure injection for testing
package testutil

import (
	"context"
	"sync"

	"github.com/carrier-rates/backend/internal/models"
	"github.com/carrier-rates/backend/internal/storage"
)

// MockStore implements storage.Store on top of a MemoryStore. Setting one of
// the Err fields makes the matching call fail without touching the data.
type MockStore struct {
	*storage.MemoryStore

	mu                sync.Mutex
	CreateTemplateErr error
	GetTemplateErr    error
	ListTemplatesErr  error
	CreateRateCardErr error

	CreateRateCardCalls int
	ListTemplatesCalls  int
	LastListLimit       int
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: storage.NewMemoryStore()}
}

func (m *MockStore) CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (string, error) {
	if err := m.failure(&m.CreateTemplateErr); err != nil {
		return "", err
	}
	return m.MemoryStore.CreateTemplate(ctx, t)
}

func (m *MockStore) GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error) {
	if err := m.failure(&m.GetTemplateErr); err != nil {
		return nil, err
	}
	return m.MemoryStore.GetTemplate(ctx, id)
}

func (m *MockStore) ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error) {
	m.mu.Lock()
	m.ListTemplatesCalls++
	m.LastListLimit = limit
	m.mu.Unlock()

	if err := m.failure(&m.ListTemplatesErr); err != nil {
		return nil, err
	}
	return m.MemoryStore.ListTemplates(ctx, carrierID, limit)
}

func (m *MockStore) CreateRateCard(ctx context.Context, card *models.RateCard, inc models.UsageIncrement) error {
	m.mu.Lock()
	m.CreateRateCardCalls++
	m.mu.Unlock()

	if err := m.failure(&m.CreateRateCardErr); err != nil {
		return err
	}
	return m.MemoryStore.CreateRateCard(ctx, card, inc)
}

func (m *MockStore) failure(err *error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *err
}

// SeedTemplate stores t as given, without normalization or new ids.
func (m *MockStore) SeedTemplate(t *models.CarrierRateTemplate) *models.CarrierRateTemplate {
	if _, err := m.MemoryStore.CreateTemplate(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}
