// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the store layer
// from the concrete Supabase and mock implementations, chosen once by the
// composition root.
package port

import (
	"context"

	"github.com/zenthra/zenthra-api/internal/domain"
)

// AuthBackend is the identity collaborator (GoTrue in live mode, an
// in-memory credential table in mock mode). Session-change notifications
// are delivered through OnAuthStateChange for the process lifetime.
type AuthBackend interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*domain.Session, error)

	// SignInWithPassword verifies credentials and establishes a session.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)

	// SignUp creates an account. Depending on the backend's confirmation
	// policy the returned session may be nil (no auto-authentication).
	SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.Session, error)

	// SignOut terminates the current session.
	SignOut(ctx context.Context) error

	// UpdateUser applies partial attribute updates (e.g. password) to the
	// currently authenticated user.
	UpdateUser(ctx context.Context, attrs domain.UserAttributes) error

	// OnAuthStateChange registers fn to run after every session change.
	// The returned function unsubscribes.
	OnAuthStateChange(fn func(session *domain.Session)) (unsubscribe func())
}

// UserDirectory reads and writes the users table.
type UserDirectory interface {
	// GetProfile fetches a profile by auth user id. A missing profile is
	// reported as *domain.ErrNotFound.
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)

	// CreateProfile persists a synthesized profile and returns the stored row.
	CreateProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
}

// LeadRepository is the lead collection collaborator. The mock
// implementation serves List from the sample dataset and fails every
// write with *domain.ErrNotConfigured.
type LeadRepository interface {
	// List returns all leads ordered by creation time, newest first.
	List(ctx context.Context) ([]domain.Lead, error)

	// Insert stores a new lead with status=new, priority=medium and
	// returns the stored row including its assigned id and timestamps.
	Insert(ctx context.Context, input domain.NewLeadInput) (*domain.Lead, error)

	// Update sends only the patch's non-nil fields and returns the
	// canonical updated row.
	Update(ctx context.Context, id string, patch domain.LeadPatch) (*domain.Lead, error)

	// Delete removes a lead by id. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}

// StateStore is the local persistence capability standing in for the
// browser's localStorage: one JSON value per key, wiped wholesale on
// sign-out.
type StateStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error

	// Clear discards every stored key, not just the auth blob.
	Clear() error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
