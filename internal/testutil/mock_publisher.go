package testutil

import (
	"context"
	"sync"

	"github.com/carrier-rates/backend/internal/notify"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []notify.RateCardImported
	Err    error
}

func (p *MockPublisher) PublishImported(ctx context.Context, evt notify.RateCardImported) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, evt)
	return nil
}

func (p *MockPublisher) Close() error { return nil }

// Published returns a copy of the recorded events.
func (p *MockPublisher) Published() []notify.RateCardImported {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.RateCardImported{}, p.Events...)
}
