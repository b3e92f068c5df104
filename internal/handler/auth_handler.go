package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zenthra/zenthra-api/internal/store"

	"go.uber.org/zap"
)

// ============================================================
// Auth endpoints — /v1/auth/*
// ============================================================

func authSignInHandler(auth *store.AuthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signin")
		defer span.End()

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		if err := auth.SignIn(ctx, req.Email, req.Password); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, meResponse(auth))
	}
}

func authSignUpHandler(auth *store.AuthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signup")
		defer span.End()

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"fullName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || !emailPattern.MatchString(req.Email) {
			writeError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		if len(req.Password) < 6 {
			writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}

		if err := auth.SignUp(ctx, req.Email, req.Password, req.FullName); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, meResponse(auth))
	}
}

func authSignOutHandler(auth *store.AuthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signout")
		defer span.End()

		if err := auth.SignOut(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authMeHandler(auth *store.AuthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, meResponse(auth))
	}
}

func authPasswordHandler(auth *store.AuthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/auth/password")
		defer span.End()

		var req struct {
			NewPassword string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := auth.UpdatePassword(ctx, req.NewPassword); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}

// meResponse reports the auth state the frontend renders from: the
// identity plus the derived flags, never the raw tokens.
func meResponse(auth *store.AuthStore) map[string]any {
	resp := map[string]any{
		"loading":       auth.Loading(),
		"authenticated": auth.IsAuthenticated(),
		"isAdmin":       auth.IsAdmin(),
	}
	if user := auth.CurrentUser(); user != nil {
		resp["user"] = user
	}
	if profile := auth.CurrentProfile(); profile != nil {
		resp["profile"] = profile
	}
	return resp
}
