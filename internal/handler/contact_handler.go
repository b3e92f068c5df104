package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/store"

	"go.uber.org/zap"
)

// emailPattern is the same permissive shape the site's form enforces:
// something@something.something, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ============================================================
// Public contact form — POST /v1/contact
// ============================================================

func contactHandler(leads *store.LeadStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contact")
		defer span.End()

		var req domain.NewLeadInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Company = strings.TrimSpace(req.Company)
		req.Subject = strings.TrimSpace(req.Subject)
		req.Message = strings.TrimSpace(req.Message)

		// Form-level validation lives here, outside the store.
		if msg, ok := validateContact(req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		lead, err := leads.AddLead(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      lead.ID,
			"message": "Thanks for reaching out. We will get back to you shortly.",
		})
	}
}

func validateContact(req domain.NewLeadInput) (string, bool) {
	switch {
	case req.Name == "":
		return "name is required", false
	case req.Email == "":
		return "email is required", false
	case !emailPattern.MatchString(req.Email):
		return "email is not a valid address", false
	case req.Subject == "":
		return "subject is required", false
	case req.Message == "":
		return "message is required", false
	}
	return "", true
}
