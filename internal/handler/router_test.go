package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/handler"
	"github.com/zenthra/zenthra-api/internal/infra/cache"
	"github.com/zenthra/zenthra-api/internal/infra/mock"
	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/infra/statefile"
	"github.com/zenthra/zenthra-api/internal/store"

	"go.uber.org/zap"
)

// newTestRouter wires the full mock-mode composition: mock backend,
// mock directory, mock lead repository, file state in a temp dir.
func newTestRouter(t *testing.T) (http.Handler, *store.AuthStore, *store.LeadStore) {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	backend, err := mock.NewAuthBackend("test-secret", logger)
	if err != nil {
		t.Fatalf("NewAuthBackend: %v", err)
	}
	state, err := statefile.New(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("statefile.New: %v", err)
	}

	auth := store.NewAuthStore(
		backend,
		mock.NewDirectory(time.Now()),
		state,
		cache.New[*domain.UserProfile](time.Minute),
		metrics,
		logger,
		true,
		time.Second,
	)
	t.Cleanup(auth.Close)
	auth.Init(context.Background())

	leads := store.NewLeadStore(mock.NewLeadStore(time.Now()), metrics, logger)
	leads.FetchLeads(context.Background())

	router := handler.NewRouter(auth, leads, metrics, []string{"http://localhost:5173"}, logger)
	return router, auth, leads
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signInAsAdmin(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/v1/auth/signin",
		`{"email":"admin@zenthra.com","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestContact_MockModeRefusesWith422(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/contact",
		`{"name":"Jane","email":"jane@example.com","subject":"Hello","message":"Hi there"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 in mock mode, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestContact_Validation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.co","subject":"s","message":"m"}`},
		{"missing email", `{"name":"A","subject":"s","message":"m"}`},
		{"bad email", `{"name":"A","email":"not-an-email","subject":"s","message":"m"}`},
		{"email with spaces", `{"name":"A","email":"a b@c.co","subject":"s","message":"m"}`},
		{"missing subject", `{"name":"A","email":"a@b.co","message":"m"}`},
		{"missing message", `{"name":"A","email":"a@b.co","subject":"s"}`},
		{"not json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/contact", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAdminRoutes_RequireSignIn(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/leads", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 signed out, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/auth/signin" {
		t.Errorf("expected sign-in location hint, got %q", loc)
	}
}

func TestAdminRoutes_NonAdminForbidden(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/auth/signup",
		`{"email":"visitor@example.com","password":"secret12","fullName":"Visitor"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign-up failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/admin/leads", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestAdminLeads_ListAndFilters(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signInAsAdmin(t, router)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/leads", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Leads []domain.Lead `json:"leads"`
		Error string        `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Leads) != 8 {
		t.Errorf("expected 8 leads, got %d", len(resp.Leads))
	}
	if resp.Error != "" {
		t.Errorf("unexpected error field: %s", resp.Error)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/admin/leads?status=new", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode filtered response: %v", err)
	}
	if len(resp.Leads) != 2 {
		t.Errorf("expected 2 new leads, got %d", len(resp.Leads))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/admin/leads?q=techcorp", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if len(resp.Leads) != 1 || resp.Leads[0].ID != "lead-1" {
		t.Errorf("expected only lead-1 for techcorp, got %d results", len(resp.Leads))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/admin/leads?status=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAdminLeads_GetByID(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signInAsAdmin(t, router)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/leads/lead-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var lead domain.Lead
	if err := json.Unmarshal(rec.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode lead: %v", err)
	}
	if lead.Company != "TechCorp Solutions" {
		t.Errorf("unexpected lead: %+v", lead)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/admin/leads/no-such", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAdminLeads_Stats(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signInAsAdmin(t, router)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/leads/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats domain.LeadStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	want := domain.LeadStats{Total: 8, New: 2, Qualified: 2, Converted: 1, HighPriority: 3}
	if stats != want {
		t.Errorf("stats mismatch: got %+v, want %+v", stats, want)
	}
}

func TestAdminLeads_WritesRefuseInMockMode(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signInAsAdmin(t, router)

	rec := doRequest(t, router, http.MethodPatch, "/v1/admin/leads/lead-1", `{"status":"contacted"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 patch in mock mode, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/admin/leads/lead-1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 delete in mock mode, got %d", rec.Code)
	}
}

func TestAuthFlow_MeReflectsState(t *testing.T) {
	router, _, _ := newTestRouter(t)

	var me struct {
		Authenticated bool `json:"authenticated"`
		IsAdmin       bool `json:"isAdmin"`
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/auth/me", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Authenticated || me.IsAdmin {
		t.Errorf("expected signed out, got %+v", me)
	}

	signInAsAdmin(t, router)

	rec = doRequest(t, router, http.MethodGet, "/v1/auth/me", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if !me.Authenticated || !me.IsAdmin {
		t.Errorf("expected signed-in admin, got %+v", me)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/auth/signout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 signout, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/auth/me", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Authenticated {
		t.Error("expected signed out after signout")
	}
}

func TestAuthSignIn_BadCredentials(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/auth/signin",
		`{"email":"admin@zenthra.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/auth/signin", `{"email":"admin@zenthra.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", rec.Code)
	}
}

func TestAuthPassword_RequiresSession(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/v1/auth/password", `{"newPassword":"changed99"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 signed out, got %d", rec.Code)
	}

	signInAsAdmin(t, router)

	rec = doRequest(t, router, http.MethodPut, "/v1/auth/password", `{"newPassword":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/auth/password", `{"newPassword":"changed99"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminOps_SnapshotReflectsActivity(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signInAsAdmin(t, router)

	// One more successful fetch on top of the warm-up one, plus a
	// mock-mode write failure.
	doRequest(t, router, http.MethodPost, "/v1/admin/leads/refresh", "")
	doRequest(t, router, http.MethodPatch, "/v1/admin/leads/lead-1", `{"status":"contacted"}`)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/ops", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snapshot struct {
		LeadOperations map[string]struct {
			Success float64 `json:"success"`
			Failure float64 `json:"failure"`
		} `json:"leadOperations"`
		AuthOperations map[string]struct {
			Success float64 `json:"success"`
			Failure float64 `json:"failure"`
		} `json:"authOperations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	if got := snapshot.LeadOperations["fetch"].Success; got != 2 {
		t.Errorf("expected 2 successful fetches, got %v", got)
	}
	if got := snapshot.LeadOperations["update"].Failure; got != 1 {
		t.Errorf("expected 1 failed update, got %v", got)
	}
	if got := snapshot.AuthOperations["signin"].Success; got != 1 {
		t.Errorf("expected 1 successful sign-in, got %v", got)
	}
}

func TestAdminOps_RequiresAdmin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/admin/ops", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 signed out, got %d", rec.Code)
	}
}

func TestAdminLeads_RefreshReportsBackendError(t *testing.T) {
	router, _, leads := newTestRouter(t)
	signInAsAdmin(t, router)

	rec := doRequest(t, router, http.MethodPost, "/v1/admin/leads/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh must not fail outright, got %d", rec.Code)
	}

	var resp struct {
		Leads []domain.Lead `json:"leads"`
		Error string        `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if len(resp.Leads) != 8 {
		t.Errorf("expected 8 leads after refresh, got %d", len(resp.Leads))
	}
	if resp.Error != "" {
		t.Errorf("unexpected error: %s", resp.Error)
	}
	if leads.Loading() {
		t.Error("loading must settle after refresh")
	}
}
