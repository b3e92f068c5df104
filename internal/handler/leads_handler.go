package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/store"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Admin lead management — /v1/admin/leads
// ============================================================

// listLeadsHandler serves the local collection with optional filters.
// Filtering happens against the collection the dashboard already holds;
// a refresh is an explicit separate action.
func listLeadsHandler(leads *store.LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/leads")
		defer span.End()

		var result []domain.Lead
		switch {
		case r.URL.Query().Get("q") != "":
			result = leads.SearchLeads(r.URL.Query().Get("q"))
		case r.URL.Query().Get("status") != "":
			status := domain.LeadStatus(r.URL.Query().Get("status"))
			if !status.Valid() {
				writeError(w, http.StatusBadRequest, "unknown status")
				return
			}
			result = leads.GetLeadsByStatus(status)
		default:
			result = leads.Leads()
		}

		if p := r.URL.Query().Get("priority"); p != "" {
			priority := domain.LeadPriority(p)
			if !priority.Valid() {
				writeError(w, http.StatusBadRequest, "unknown priority")
				return
			}
			filtered := make([]domain.Lead, 0, len(result))
			for _, l := range result {
				if l.Priority == priority {
					filtered = append(filtered, l)
				}
			}
			result = filtered
		}

		span.SetAttributes(attribute.Int("leads.count", len(result)))
		writeJSON(w, http.StatusOK, map[string]any{
			"leads": result,
			"error": leads.LastError(),
		})
	}
}

func getLeadHandler(leads *store.LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/leads/{leadId}")
		defer span.End()

		id := chi.URLParam(r, "leadId")
		lead, ok := leads.GetLeadByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "lead not found: "+id)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	}
}

func updateLeadHandler(leads *store.LeadStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/leads/{leadId}")
		defer span.End()

		id := chi.URLParam(r, "leadId")
		span.SetAttributes(attribute.String("lead.id", id))

		var patch domain.LeadPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lead, err := leads.UpdateLead(ctx, id, patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	}
}

func deleteLeadHandler(leads *store.LeadStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/leads/{leadId}")
		defer span.End()

		id := chi.URLParam(r, "leadId")
		if err := leads.DeleteLead(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// refreshLeadsHandler re-fetches the collection. The fetch itself never
// fails the request; a backend problem shows up in the error field.
func refreshLeadsHandler(leads *store.LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/leads/refresh")
		defer span.End()

		leads.FetchLeads(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"leads": leads.Leads(),
			"error": leads.LastError(),
		})
	}
}

func leadStatsHandler(leads *store.LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/leads/stats")
		defer span.End()

		writeJSON(w, http.StatusOK, leads.Stats())
	}
}
