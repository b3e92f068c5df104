package mock

import (
	"context"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
)

// LeadStore serves the sample pipeline read-only. Every write fails
// with ErrNotConfigured: lead capture without persistence must never
// look successful, so writes refuse rather than pretend.
type LeadStore struct {
	mu    sync.Mutex
	leads []domain.Lead
}

// NewLeadStore seeds the store with the sample dataset.
func NewLeadStore(now time.Time) *LeadStore {
	return &LeadStore{leads: SampleLeads(now)}
}

// List returns the sample leads, newest first.
func (s *LeadStore) List(ctx context.Context) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Lead, len(s.leads))
	copy(out, s.leads)
	return out, nil
}

func (s *LeadStore) Insert(ctx context.Context, input domain.NewLeadInput) (*domain.Lead, error) {
	return nil, &domain.ErrNotConfigured{Operation: "insert lead"}
}

func (s *LeadStore) Update(ctx context.Context, id string, patch domain.LeadPatch) (*domain.Lead, error) {
	return nil, &domain.ErrNotConfigured{Operation: "update lead"}
}

func (s *LeadStore) Delete(ctx context.Context, id string) error {
	return &domain.ErrNotConfigured{Operation: "delete lead"}
}
