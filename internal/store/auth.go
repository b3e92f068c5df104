// Package store holds the process-wide state stores behind the HTTP
// surface: the operator's auth state and the lead collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var authTracer = otel.Tracer("store/auth")

// mockSessionKey is the state-store key the persisted session lives under.
const mockSessionKey = "mockUser"

const minPasswordLength = 6

// AuthStore tracks the signed-in operator: session, identity, profile
// and a loading flag that is guaranteed to settle after Init.
type AuthStore struct {
	backend   port.AuthBackend
	directory port.UserDirectory
	state     port.StateStore
	cache     port.Cache[*domain.UserProfile]
	metrics   *observability.Metrics
	logger    *zap.Logger

	mockMode    bool
	initTimeout time.Duration

	mu      sync.RWMutex
	user    *domain.AuthUser
	profile *domain.UserProfile
	session *domain.Session
	loading bool

	subscribeOnce sync.Once
	unsubscribe   func()
	sf            singleflight.Group
}

// NewAuthStore creates the auth store with all dependencies injected.
// The store starts in the loading state until Init settles it.
func NewAuthStore(
	backend port.AuthBackend,
	directory port.UserDirectory,
	state port.StateStore,
	cache port.Cache[*domain.UserProfile],
	metrics *observability.Metrics,
	logger *zap.Logger,
	mockMode bool,
	initTimeout time.Duration,
) *AuthStore {
	return &AuthStore{
		backend:     backend,
		directory:   directory,
		state:       state,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		mockMode:    mockMode,
		initTimeout: initTimeout,
		loading:     true,
	}
}

// ============================================================
// Init — session restoration with a bounded wait
// ============================================================

// Init restores any existing session and subscribes to auth-state
// changes. Loading() is guaranteed false when Init returns, even if the
// backend hangs past the configured timeout.
func (s *AuthStore) Init(ctx context.Context) {
	ctx, span := authTracer.Start(ctx, "AuthStore.Init")
	defer span.End()

	s.setLoading(true)
	defer s.setLoading(false)

	s.ensureSubscribed()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if s.mockMode {
			s.restorePersistedSession(ctx)
		} else {
			s.restoreBackendSession(ctx)
		}
	}()

	select {
	case <-done:
	case <-time.After(s.initTimeout):
		s.logger.Warn("auth init did not settle in time, continuing signed out",
			zap.Duration("timeout", s.initTimeout),
		)
	case <-ctx.Done():
		s.logger.Warn("auth init cancelled", zap.Error(ctx.Err()))
	}
}

// restorePersistedSession reads the mock session blob from local state.
// A corrupt or expired blob is discarded and the user treated as
// signed out; restoration must never crash startup.
func (s *AuthStore) restorePersistedSession(ctx context.Context) {
	raw, ok, err := s.state.Get(mockSessionKey)
	if err != nil {
		s.logger.Warn("failed to read persisted session", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.User == nil {
		s.logger.Debug("discarding corrupt persisted session", zap.Error(err))
		if err := s.state.Delete(mockSessionKey); err != nil {
			s.logger.Warn("failed to remove corrupt session blob", zap.Error(err))
		}
		return
	}
	if time.Now().After(session.ExpiresAt) {
		s.logger.Debug("discarding expired persisted session")
		if err := s.state.Delete(mockSessionKey); err != nil {
			s.logger.Warn("failed to remove expired session blob", zap.Error(err))
		}
		return
	}

	// Let the backend adopt the session too when it supports restoration.
	if r, ok := s.backend.(interface{ RestoreSession(*domain.Session) }); ok {
		r.RestoreSession(&session)
	}

	profile := s.fetchOrCreateProfile(ctx, session.User)

	s.mu.Lock()
	s.session = &session
	s.user = session.User
	s.profile = profile
	s.mu.Unlock()

	s.logger.Info("restored persisted session", zap.String("email", session.User.Email))
}

func (s *AuthStore) restoreBackendSession(ctx context.Context) {
	session, err := s.backend.GetSession(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch session during init", zap.Error(err))
		return
	}
	if session == nil || session.User == nil {
		return
	}

	profile := s.fetchOrCreateProfile(ctx, session.User)

	s.mu.Lock()
	s.session = session
	s.user = session.User
	s.profile = profile
	s.mu.Unlock()

	s.logger.Info("restored backend session", zap.String("email", session.User.Email))
}

// ensureSubscribed attaches the auth-state listener exactly once for
// the process lifetime. Every session change flows through
// handleAuthChange regardless of which operation caused it.
func (s *AuthStore) ensureSubscribed() {
	s.subscribeOnce.Do(func() {
		s.unsubscribe = s.backend.OnAuthStateChange(func(session *domain.Session) {
			s.handleAuthChange(context.Background(), session)
		})
	})
}

func (s *AuthStore) handleAuthChange(ctx context.Context, session *domain.Session) {
	if session == nil || session.User == nil {
		s.mu.Lock()
		s.session = nil
		s.user = nil
		s.profile = nil
		s.mu.Unlock()
		return
	}

	profile := s.fetchOrCreateProfile(ctx, session.User)

	s.mu.Lock()
	s.session = session
	s.user = session.User
	s.profile = profile
	s.mu.Unlock()

	if s.mockMode {
		s.persistSession(session)
	}
}

func (s *AuthStore) persistSession(session *domain.Session) {
	blob, err := json.Marshal(session)
	if err != nil {
		s.logger.Error("failed to marshal session", zap.Error(err))
		return
	}
	if err := s.state.Set(mockSessionKey, blob); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

// fetchOrCreateProfile resolves the directory profile for an auth user,
// creating one with an email-derived role on first sign-in. Concurrent
// auth events for the same user collapse into one directory round trip.
func (s *AuthStore) fetchOrCreateProfile(ctx context.Context, user *domain.AuthUser) *domain.UserProfile {
	ctx, span := authTracer.Start(ctx, "AuthStore.fetchOrCreateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", user.ID))

	if cached, ok := s.cache.Get(user.ID); ok {
		s.metrics.IncrCacheHit("profile")
		return cached
	}
	s.metrics.IncrCacheMiss("profile")

	result, err, _ := s.sf.Do(user.ID, func() (any, error) {
		profile, err := s.directory.GetProfile(ctx, user.ID)
		if err == nil {
			return profile, nil
		}

		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}

		created, err := s.directory.CreateProfile(ctx, &domain.UserProfile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     domain.DeriveRole(user.Email),
			IsActive: true,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("created profile for first sign-in",
			zap.String("user_id", user.ID),
			zap.String("role", string(created.Role)),
		)
		return created, nil
	})
	if err != nil {
		// A missing profile downgrades to signed-in-without-profile;
		// IsAdmin stays false and the gate denies.
		s.logger.Warn("failed to resolve profile", zap.String("user_id", user.ID), zap.Error(err))
		s.metrics.IncrExternalError("user_directory")
		return nil
	}

	profile := result.(*domain.UserProfile)
	s.cache.Set(user.ID, profile)
	return profile
}

// ============================================================
// Operations
// ============================================================

// SignIn authenticates with the backend. State propagation happens via
// the auth-state subscription, not by writing the profile here.
func (s *AuthStore) SignIn(ctx context.Context, email, password string) error {
	ctx, span := authTracer.Start(ctx, "AuthStore.SignIn")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("auth.signin", time.Since(start))
	}()

	s.ensureSubscribed()

	if _, err := s.backend.SignInWithPassword(ctx, email, password); err != nil {
		s.metrics.IncrAuthAttempt("signin", "failure")
		return err
	}

	s.metrics.IncrAuthAttempt("signin", "success")
	s.logger.Info("operator signed in", zap.String("email", email))
	return nil
}

// SignUp registers an account. Whether the caller ends up signed in is
// the backend's choice: the mock backend authenticates immediately, a
// confirmation-required live project does not.
func (s *AuthStore) SignUp(ctx context.Context, email, password, fullName string) error {
	ctx, span := authTracer.Start(ctx, "AuthStore.SignUp")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("auth.signup", time.Since(start))
	}()

	s.ensureSubscribed()

	if _, err := s.backend.SignUp(ctx, email, password, domain.SignUpMetadata{FullName: fullName}); err != nil {
		s.metrics.IncrAuthAttempt("signup", "failure")
		return err
	}

	s.metrics.IncrAuthAttempt("signup", "success")
	s.logger.Info("account registered", zap.String("email", email))
	return nil
}

// SignOut terminates the session and wipes all local state, not just
// the session blob.
func (s *AuthStore) SignOut(ctx context.Context) error {
	ctx, span := authTracer.Start(ctx, "AuthStore.SignOut")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("auth.signout", time.Since(start))
	}()

	s.ensureSubscribed()

	if err := s.backend.SignOut(ctx); err != nil {
		s.logger.Warn("backend sign-out failed, clearing local state anyway", zap.Error(err))
	}

	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.session = nil
	s.user = nil
	s.profile = nil
	s.mu.Unlock()

	if userID != "" {
		s.cache.Delete(userID)
	}
	if err := s.state.Clear(); err != nil {
		s.logger.Warn("failed to clear local state", zap.Error(err))
	}

	s.metrics.IncrAuthAttempt("signout", "success")
	return nil
}

// UpdatePassword changes the signed-in operator's password.
func (s *AuthStore) UpdatePassword(ctx context.Context, newPassword string) error {
	ctx, span := authTracer.Start(ctx, "AuthStore.UpdatePassword")
	defer span.End()

	if len(newPassword) < minPasswordLength {
		return &domain.ErrValidation{Field: "password", Message: "password must be at least 6 characters"}
	}
	if !s.IsAuthenticated() {
		return &domain.ErrUnauthorized{Message: "sign in to change the password"}
	}

	if err := s.backend.UpdateUser(ctx, domain.UserAttributes{Password: newPassword}); err != nil {
		s.metrics.IncrAuthAttempt("password_change", "failure")
		return err
	}

	s.metrics.IncrAuthAttempt("password_change", "success")
	s.logger.Info("password updated")
	return nil
}

// Close detaches the auth-state subscription.
func (s *AuthStore) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// ============================================================
// Derived state
// ============================================================

// Loading reports whether session restoration is still in flight.
func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated reports whether an operator is signed in.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.user != nil
}

// IsAdmin reports whether the signed-in operator may use the dashboard.
func (s *AuthStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.IsAdmin()
}

// CurrentUser returns the signed-in identity, or nil.
func (s *AuthStore) CurrentUser() *domain.AuthUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// CurrentProfile returns the resolved profile, or nil.
func (s *AuthStore) CurrentProfile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
