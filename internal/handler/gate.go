package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// Access gate for the admin surface
// ============================================================

// Decision is the outcome of the access gate.
type Decision int

const (
	// Wait: auth state is still being restored; the caller should retry.
	Wait Decision = iota
	// Allow: the request may proceed.
	Allow
	// Deny: the caller is signed out or lacks the admin role.
	Deny
)

// Decide is the pure gate rule: loading always wins, then
// authentication, then (when required) the admin role. An inactive
// admin account is indistinguishable from a non-admin here.
func Decide(loading, isAuthenticated, isAdmin, requireAdmin bool) Decision {
	if loading {
		return Wait
	}
	if !isAuthenticated {
		return Deny
	}
	if requireAdmin && !isAdmin {
		return Deny
	}
	return Allow
}

// authState is the slice of the auth store the gate consumes.
type authState interface {
	Loading() bool
	IsAuthenticated() bool
	IsAdmin() bool
}

// Gate returns middleware enforcing the access decision. Wait maps to
// 503 with a Retry-After hint, Deny to 401 for the signed-out case and
// 403 for a signed-in non-admin.
func Gate(auth authState, requireAdmin bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Decide(auth.Loading(), auth.IsAuthenticated(), auth.IsAdmin(), requireAdmin) {
			case Wait:
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "auth state is still loading, retry shortly")
			case Deny:
				if !auth.IsAuthenticated() {
					logger.Debug("gate denied unauthenticated request", zap.String("path", r.URL.Path))
					w.Header().Set("Location", "/v1/auth/signin")
					writeError(w, http.StatusUnauthorized, "sign in required")
					return
				}
				logger.Warn("gate denied non-admin request", zap.String("path", r.URL.Path))
				writeError(w, http.StatusForbidden, "admin access required")
			case Allow:
				next.ServeHTTP(w, r)
			}
		})
	}
}
