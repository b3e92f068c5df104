package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// LeadStore implementation — leads CRUD via PostgREST
// ============================================================

// leadRow maps the leads table columns to our domain.
type leadRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (r leadRow) toDomain() domain.Lead {
	return domain.Lead{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Company:   r.Company,
		Subject:   r.Subject,
		Message:   r.Message,
		Status:    domain.LeadStatus(r.Status),
		Priority:  domain.LeadPriority(r.Priority),
		Notes:     r.Notes,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp handles the timestamp flavors PostgREST emits.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, _ = time.Parse("2006-01-02T15:04:05.999999", s)
	}
	return t
}

// List fetches every lead, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeads")
	defer span.End()

	var leads []domain.Lead

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, "leads?select=*&order=created_at.desc")
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				leads = []domain.Lead{}
				return nil
			}

			var rows []leadRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode leads: %w", err)
			}

			leads = make([]domain.Lead, 0, len(rows))
			for _, r := range rows {
				leads = append(leads, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	return leads, nil
}

// Insert stores a new lead. Status and priority are forced server-side
// so a submitter can never inject pipeline state.
func (c *Client) Insert(ctx context.Context, input domain.NewLeadInput) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertLead")
	defer span.End()

	data := map[string]any{
		"name":     input.Name,
		"email":    input.Email,
		"company":  input.Company,
		"subject":  input.Subject,
		"message":  input.Message,
		"status":   string(domain.StatusNew),
		"priority": string(domain.PriorityMedium),
	}

	var lead *domain.Lead

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doPost(ctx, "leads", data)
			if err != nil {
				return err
			}

			row, err := decodeSingleLead(body)
			if err != nil {
				return err
			}
			lead = row
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	return lead, nil
}

// Update patches only the fields the caller set and returns the
// canonical updated row.
func (c *Client) Update(ctx context.Context, id string, patch domain.LeadPatch) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	path := fmt.Sprintf("leads?id=eq.%s", url.QueryEscape(id))

	var lead *domain.Lead

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doPatch(ctx, path, patch)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "lead", ID: id}
			}

			row, err := decodeSingleLead(body)
			if err != nil {
				return err
			}
			lead = row
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	return lead, nil
}

// Delete removes a lead by id. PostgREST treats a filter matching zero
// rows as success, which gives us the no-op semantics for unknown ids.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	path := fmt.Sprintf("leads?id=eq.%s", url.QueryEscape(id))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return c.doDelete(ctx, path)
		})
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}
	return nil
}

// decodeSingleLead unwraps the one-element array PostgREST returns for
// return=representation writes.
func decodeSingleLead(body []byte) (*domain.Lead, error) {
	var rows []leadRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode lead: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no rows for lead write")
	}
	lead := rows[0].toDomain()
	return &lead, nil
}
