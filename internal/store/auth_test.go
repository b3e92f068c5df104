package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/infra/cache"
	"github.com/zenthra/zenthra-api/internal/infra/mock"
	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/infra/statefile"
	"github.com/zenthra/zenthra-api/internal/store"

	"go.uber.org/zap"
)

func newMockAuthStore(t *testing.T, statePath string) (*store.AuthStore, *statefile.Store) {
	t.Helper()

	backend, err := mock.NewAuthBackend("test-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuthBackend: %v", err)
	}
	state, err := statefile.New(statePath)
	if err != nil {
		t.Fatalf("statefile.New: %v", err)
	}

	s := store.NewAuthStore(
		backend,
		mock.NewDirectory(time.Now()),
		state,
		cache.New[*domain.UserProfile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		true,
		time.Second,
	)
	t.Cleanup(s.Close)
	return s, state
}

func TestAuthStore_InitSettlesSignedOut(t *testing.T) {
	s, _ := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))

	s.Init(context.Background())

	if s.Loading() {
		t.Error("Loading must be false after Init")
	}
	if s.IsAuthenticated() {
		t.Error("expected signed out with no persisted session")
	}
	if s.IsAdmin() {
		t.Error("signed-out operator can never be admin")
	}
}

// hangingBackend never answers GetSession, simulating an unreachable
// auth service during startup.
type hangingBackend struct{}

func (hangingBackend) GetSession(ctx context.Context) (*domain.Session, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (hangingBackend) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, &domain.ErrTimeout{Operation: "signin"}
}
func (hangingBackend) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.Session, error) {
	return nil, &domain.ErrTimeout{Operation: "signup"}
}
func (hangingBackend) SignOut(ctx context.Context) error { return nil }
func (hangingBackend) UpdateUser(ctx context.Context, attrs domain.UserAttributes) error {
	return nil
}
func (hangingBackend) OnAuthStateChange(fn func(*domain.Session)) func() { return func() {} }

func TestAuthStore_InitBoundedWhenBackendHangs(t *testing.T) {
	state, err := statefile.New(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("statefile.New: %v", err)
	}

	s := store.NewAuthStore(
		hangingBackend{},
		mock.NewDirectory(time.Now()),
		state,
		cache.New[*domain.UserProfile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		false,
		50*time.Millisecond,
	)
	t.Cleanup(s.Close)

	start := time.Now()
	s.Init(context.Background())

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Init took %v, want bounded wait", elapsed)
	}
	if s.Loading() {
		t.Error("Loading must be false even when the backend hangs")
	}
	if s.IsAuthenticated() {
		t.Error("expected signed out after init timeout")
	}
}

func TestAuthStore_SignInEstablishesAdminState(t *testing.T) {
	s, state := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))
	s.Init(context.Background())

	if err := s.SignIn(context.Background(), "admin@zenthra.com", "admin123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if !s.IsAuthenticated() {
		t.Fatal("expected authenticated")
	}
	if !s.IsAdmin() {
		t.Error("corporate-domain account must be admin")
	}
	if p := s.CurrentProfile(); p == nil || p.Role != domain.RoleAdmin {
		t.Errorf("expected admin profile, got %+v", p)
	}

	if _, ok, _ := state.Get("mockUser"); !ok {
		t.Error("expected session persisted for restart restore")
	}
}

func TestAuthStore_SignInWrongPassword(t *testing.T) {
	s, _ := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))
	s.Init(context.Background())

	err := s.SignIn(context.Background(), "admin@zenthra.com", "wrong")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %T: %v", err, err)
	}
	if s.IsAuthenticated() {
		t.Error("failed sign-in must not authenticate")
	}
}

func TestAuthStore_SessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first, _ := newMockAuthStore(t, path)
	first.Init(context.Background())
	if err := first.SignIn(context.Background(), "team.zenthra@gmail.com", "zenthra123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	second, _ := newMockAuthStore(t, path)
	second.Init(context.Background())

	if !second.IsAuthenticated() {
		t.Fatal("expected restored session after restart")
	}
	if !second.IsAdmin() {
		t.Error("team address must restore as admin")
	}
	if u := second.CurrentUser(); u == nil || u.Email != "team.zenthra@gmail.com" {
		t.Errorf("unexpected restored user: %+v", u)
	}
}

func TestAuthStore_CorruptPersistedSessionDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	state, err := statefile.New(path)
	if err != nil {
		t.Fatalf("statefile.New: %v", err)
	}
	// Valid JSON, wrong shape for a session.
	if err := state.Set("mockUser", []byte(`"garbage"`)); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	s, state := newMockAuthStore(t, path)
	s.Init(context.Background())

	if s.IsAuthenticated() {
		t.Error("corrupt blob must leave the operator signed out")
	}
	if _, ok, _ := state.Get("mockUser"); ok {
		t.Error("corrupt blob must be removed")
	}
}

func TestAuthStore_SignOutWipesAllLocalState(t *testing.T) {
	s, state := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))
	s.Init(context.Background())

	if err := s.SignIn(context.Background(), "admin@zenthra.com", "admin123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := state.Set("unrelated", []byte(`{"k":1}`)); err != nil {
		t.Fatalf("Set unrelated: %v", err)
	}

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if s.IsAuthenticated() || s.IsAdmin() {
		t.Error("expected signed out")
	}
	if s.CurrentProfile() != nil {
		t.Error("profile must be cleared")
	}
	for _, key := range []string{"mockUser", "unrelated"} {
		if _, ok, _ := state.Get(key); ok {
			t.Errorf("expected %s wiped on sign-out", key)
		}
	}
}

func TestAuthStore_SignUpPlainUserIsNotAdmin(t *testing.T) {
	s, _ := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))
	s.Init(context.Background())

	if err := s.SignUp(context.Background(), "visitor@example.com", "secret12", "Visitor"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if !s.IsAuthenticated() {
		t.Fatal("mock sign-up authenticates immediately")
	}
	if s.IsAdmin() {
		t.Error("plain-domain account must not be admin")
	}
	if p := s.CurrentProfile(); p == nil || p.Role != domain.RoleUser {
		t.Errorf("expected user role, got %+v", p)
	}
}

func TestAuthStore_UpdatePassword(t *testing.T) {
	s, _ := newMockAuthStore(t, filepath.Join(t.TempDir(), "state.json"))
	s.Init(context.Background())

	var validation *domain.ErrValidation
	if err := s.UpdatePassword(context.Background(), "short"); !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation for short password, got %T", err)
	}

	var unauthorized *domain.ErrUnauthorized
	if err := s.UpdatePassword(context.Background(), "longenough"); !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized when signed out, got %T", err)
	}

	if err := s.SignIn(context.Background(), "demo@zenthra.com", "demo123"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := s.UpdatePassword(context.Background(), "changed99"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
}

// countingDirectory records CreateProfile calls to observe the
// fetch-or-create dedup behavior.
type countingDirectory struct {
	mu      sync.Mutex
	created int
	stored  map[string]*domain.UserProfile
}

func (d *countingDirectory) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.stored[userID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
}

func (d *countingDirectory) CreateProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created++
	clone := *profile
	d.stored[profile.ID] = &clone
	out := clone
	return &out, nil
}

func TestAuthStore_ProfileCreatedOnceAcrossAuthEvents(t *testing.T) {
	backend, err := mock.NewAuthBackend("test-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuthBackend: %v", err)
	}
	state, err := statefile.New(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("statefile.New: %v", err)
	}
	directory := &countingDirectory{stored: make(map[string]*domain.UserProfile)}

	s := store.NewAuthStore(
		backend,
		directory,
		state,
		cache.New[*domain.UserProfile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		true,
		time.Second,
	)
	t.Cleanup(s.Close)
	s.Init(context.Background())

	for i := 0; i < 3; i++ {
		if err := s.SignIn(context.Background(), "admin@zenthra.com", "admin123"); err != nil {
			t.Fatalf("SignIn %d: %v", i, err)
		}
	}

	if directory.created != 1 {
		t.Errorf("expected one profile creation, got %d", directory.created)
	}
	if !s.IsAdmin() {
		t.Error("expected admin after repeated sign-ins")
	}
}
