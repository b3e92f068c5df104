package handler

import (
	"net/http"

	"github.com/zenthra/zenthra-api/internal/infra/observability"
)

// ============================================================
// Operational snapshot — GET /v1/admin/ops
// ============================================================

type opCounts struct {
	Success float64 `json:"success"`
	Failure float64 `json:"failure"`
}

// opsHandler reads the cumulative operation counters back out of the
// metrics registry so the dashboard can show activity without scraping
// the Prometheus endpoint.
func opsHandler(metrics *observability.Metrics) http.HandlerFunc {
	leadOps := []string{"fetch", "add", "update", "delete"}
	authOps := []string{"signin", "signup", "signout", "password_change"}

	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/ops")
		defer span.End()

		leads := make(map[string]opCounts, len(leadOps))
		for _, op := range leadOps {
			leads[op] = opCounts{
				Success: metrics.LeadOpCount(op, "success"),
				Failure: metrics.LeadOpCount(op, "failure"),
			}
		}

		auth := make(map[string]opCounts, len(authOps))
		for _, op := range authOps {
			auth[op] = opCounts{
				Success: metrics.AuthAttemptCount(op, "success"),
				Failure: metrics.AuthAttemptCount(op, "failure"),
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"leadOperations": leads,
			"authOperations": auth,
		})
	}
}
