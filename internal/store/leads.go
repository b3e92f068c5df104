package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var leadTracer = otel.Tracer("store/leads")

// LeadStore holds the local lead collection with a shared busy flag and
// a shared last-error string, mirroring how the dashboard consumes it.
type LeadStore struct {
	repo    port.LeadRepository
	metrics *observability.Metrics
	logger  *zap.Logger

	mu        sync.RWMutex
	leads     []domain.Lead
	loading   bool
	lastError string
}

// NewLeadStore creates the lead store with an empty collection.
func NewLeadStore(repo port.LeadRepository, metrics *observability.Metrics, logger *zap.Logger) *LeadStore {
	return &LeadStore{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		leads:   []domain.Lead{},
	}
}

// ============================================================
// Remote operations
// ============================================================

// FetchLeads replaces the whole collection from the backend. It never
// fails outright: on error the existing collection is kept and the
// error field carries the collaborator's message.
func (s *LeadStore) FetchLeads(ctx context.Context) {
	ctx, span := leadTracer.Start(ctx, "LeadStore.FetchLeads")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("leads.fetch", time.Since(start))
	}()

	s.beginOp()
	defer s.endOp()

	leads, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch leads, keeping current collection", zap.Error(err))
		s.metrics.IncrLeadOp("fetch", "failure")
		s.setError(err)
		return
	}

	s.mu.Lock()
	s.leads = leads
	s.mu.Unlock()

	s.metrics.IncrLeadOp("fetch", "success")
	span.SetAttributes(attribute.Int("leads.count", len(leads)))
}

// AddLead submits a new lead and prepends the backend-returned record.
// On any failure nothing is mutated locally.
func (s *LeadStore) AddLead(ctx context.Context, input domain.NewLeadInput) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadStore.AddLead")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("leads.add", time.Since(start))
	}()

	s.beginOp()
	defer s.endOp()

	lead, err := s.repo.Insert(ctx, input)
	if err != nil {
		s.metrics.IncrLeadOp("add", "failure")
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	s.leads = append([]domain.Lead{*lead}, s.leads...)
	s.mu.Unlock()

	s.metrics.IncrLeadOp("add", "success")
	s.logger.Info("lead captured", zap.String("lead_id", lead.ID), zap.String("email", lead.Email))
	return lead, nil
}

// UpdateLead patches a lead remotely and replaces the matching local
// record in place with the canonical returned row.
func (s *LeadStore) UpdateLead(ctx context.Context, id string, patch domain.LeadPatch) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadStore.UpdateLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("leads.update", time.Since(start))
	}()

	s.beginOp()
	defer s.endOp()

	if patch.IsEmpty() {
		err := &domain.ErrValidation{Field: "patch", Message: "no fields to update"}
		s.setError(err)
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		err := &domain.ErrValidation{Field: "status", Message: "unknown status"}
		s.setError(err)
		return nil, err
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		err := &domain.ErrValidation{Field: "priority", Message: "unknown priority"}
		s.setError(err)
		return nil, err
	}

	lead, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.metrics.IncrLeadOp("update", "failure")
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i] = *lead
			break
		}
	}
	s.mu.Unlock()

	s.metrics.IncrLeadOp("update", "success")
	return lead, nil
}

// DeleteLead removes a lead remotely then locally. An unknown id is a
// no-op on both sides, not an error.
func (s *LeadStore) DeleteLead(ctx context.Context, id string) error {
	ctx, span := leadTracer.Start(ctx, "LeadStore.DeleteLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("leads.delete", time.Since(start))
	}()

	s.beginOp()
	defer s.endOp()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.IncrLeadOp("delete", "failure")
		s.setError(err)
		return err
	}

	s.mu.Lock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.metrics.IncrLeadOp("delete", "success")
	return nil
}

// ============================================================
// Local collection helpers
// ============================================================

// Leads returns a copy of the current collection.
func (s *LeadStore) Leads() []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// GetLeadByID looks a lead up in the local collection.
func (s *LeadStore) GetLeadByID(id string) (*domain.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			clone := s.leads[i]
			return &clone, true
		}
	}
	return nil, false
}

// GetLeadsByStatus filters the local collection by status.
func (s *LeadStore) GetLeadsByStatus(status domain.LeadStatus) []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Lead{}
	for _, l := range s.leads {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// SearchLeads matches a case-insensitive substring against name, email,
// company, subject and message. Each field is matched on its own so the
// query never matches across a field boundary.
func (s *LeadStore) SearchLeads(query string) []domain.Lead {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return s.Leads()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Lead{}
	for _, l := range s.leads {
		for _, field := range []string{l.Name, l.Email, l.Company, l.Subject, l.Message} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Stats computes the dashboard counters over the local collection.
func (s *LeadStore) Stats() domain.LeadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.LeadStats{Total: len(s.leads)}
	for _, l := range s.leads {
		switch l.Status {
		case domain.StatusNew:
			stats.New++
		case domain.StatusQualified:
			stats.Qualified++
		case domain.StatusConverted:
			stats.Converted++
		}
		if l.Priority == domain.PriorityHigh {
			stats.HighPriority++
		}
	}
	return stats
}

// Loading reports whether an operation is in flight.
func (s *LeadStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the message of the most recent failure, empty when
// the last operation succeeded.
func (s *LeadStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// beginOp raises the busy flag and clears the previous error, the
// shared-state discipline every operation follows.
func (s *LeadStore) beginOp() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *LeadStore) endOp() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *LeadStore) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}
