package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = time.Hour

// account is a demo credential entry. Passwords are bcrypt-hashed at
// seed time so the plaintext table never lives past startup.
type account struct {
	id           string
	email        string
	fullName     string
	passwordHash []byte
}

// AuthBackend is an in-memory credential table implementing the same
// contract as the GoTrue client.
type AuthBackend struct {
	secret []byte
	logger *zap.Logger

	mu       sync.Mutex
	accounts map[string]*account // keyed by lowercased email
	session  *domain.Session

	cbMu      sync.Mutex
	callbacks map[int]func(session *domain.Session)
	nextCbID  int
}

// NewAuthBackend seeds the demo accounts and returns a signed-out backend.
func NewAuthBackend(secret string, logger *zap.Logger) (*AuthBackend, error) {
	b := &AuthBackend{
		secret:    []byte(secret),
		logger:    logger,
		accounts:  make(map[string]*account),
		callbacks: make(map[int]func(session *domain.Session)),
	}

	names := map[string]string{
		"team.zenthra@gmail.com": "Zenthra Admin",
		"admin@zenthra.com":      "Admin User",
		"demo@zenthra.com":       "Demo User",
	}

	for email, password := range Credentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		b.accounts[email] = &account{
			id:           uuid.New().String(),
			email:        email,
			fullName:     names[email],
			passwordHash: hash,
		}
	}
	return b, nil
}

// GetSession returns the current session, or nil when signed out or expired.
func (b *AuthBackend) GetSession(ctx context.Context) (*domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil, nil
	}
	if time.Now().After(b.session.ExpiresAt) {
		b.session = nil
		return nil, nil
	}
	return b.session, nil
}

// SignInWithPassword checks the demo credential table.
func (b *AuthBackend) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	b.mu.Lock()
	acct, ok := b.accounts[key]
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		b.logger.Debug("mock auth: rejected credentials", zap.String("email", key))
		return nil, &domain.ErrUnauthorized{Message: "invalid login credentials"}
	}

	session, err := b.newSession(acct)
	if err != nil {
		return nil, err
	}

	b.setSession(session)
	return session, nil
}

// SignUp registers a new demo account and signs it in immediately; the
// mock backend has no confirmation step.
func (b *AuthBackend) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if _, exists := b.accounts[key]; exists {
		b.mu.Unlock()
		return nil, &domain.ErrConflict{Message: "an account with this email already exists"}
	}
	acct := &account{
		id:           uuid.New().String(),
		email:        key,
		fullName:     meta.FullName,
		passwordHash: hash,
	}
	b.accounts[key] = acct
	b.mu.Unlock()

	session, err := b.newSession(acct)
	if err != nil {
		return nil, err
	}

	b.setSession(session)
	return session, nil
}

// SignOut drops the current session.
func (b *AuthBackend) SignOut(ctx context.Context) error {
	b.setSession(nil)
	return nil
}

// UpdateUser updates attributes of the signed-in account.
func (b *AuthBackend) UpdateUser(ctx context.Context, attrs domain.UserAttributes) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil || b.session.User == nil {
		return &domain.ErrUnauthorized{Message: "no active session"}
	}

	acct, ok := b.accounts[strings.ToLower(b.session.User.Email)]
	if !ok {
		return &domain.ErrNotFound{Resource: "account", ID: b.session.User.Email}
	}

	if attrs.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(attrs.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		acct.passwordHash = hash
	}
	return nil
}

// OnAuthStateChange registers fn to run after every session change.
func (b *AuthBackend) OnAuthStateChange(fn func(session *domain.Session)) (unsubscribe func()) {
	b.cbMu.Lock()
	id := b.nextCbID
	b.nextCbID++
	b.callbacks[id] = fn
	b.cbMu.Unlock()

	return func() {
		b.cbMu.Lock()
		delete(b.callbacks, id)
		b.cbMu.Unlock()
	}
}

// RestoreSession adopts a previously persisted session without firing
// auth callbacks, used on startup before subscribers attach.
func (b *AuthBackend) RestoreSession(session *domain.Session) {
	b.mu.Lock()
	b.session = session
	b.mu.Unlock()
}

func (b *AuthBackend) newSession(acct *account) (*domain.Session, error) {
	expiresAt := time.Now().Add(sessionTTL)

	claims := jwt.MapClaims{
		"sub":   acct.id,
		"email": acct.email,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: &domain.AuthUser{
			ID:       acct.id,
			Email:    acct.email,
			FullName: acct.fullName,
		},
	}, nil
}

func (b *AuthBackend) setSession(session *domain.Session) {
	b.mu.Lock()
	b.session = session
	b.mu.Unlock()

	b.cbMu.Lock()
	fns := make([]func(*domain.Session), 0, len(b.callbacks))
	for _, fn := range b.callbacks {
		fns = append(fns, fn)
	}
	b.cbMu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}
