package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ============================================================
// AuthClient — GoTrue (Supabase Auth) backend
// ============================================================

// AuthClient talks to the Supabase Auth API and tracks the process's
// current session, the way a browser client holds the signed-in user.
type AuthClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger

	mu      sync.Mutex
	session *domain.Session

	cbMu      sync.Mutex
	callbacks map[int]func(session *domain.Session)
	nextCbID  int
}

// NewAuthClient creates a GoTrue client with no active session.
func NewAuthClient(httpClient *http.Client, baseURL, apiKey string, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
		callbacks:  make(map[int]func(session *domain.Session)),
	}
}

// tokenResponse is the GoTrue token/signup payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName string `json:"full_name"`
		} `json:"user_metadata"`
	} `json:"user"`
}

func (tr *tokenResponse) toSession() *domain.Session {
	expiresAt := time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	// The access token itself is authoritative for expiry when present.
	// Parsed without verification: the signing secret stays in GoTrue.
	if claims := parseClaims(tr.AccessToken); claims != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}

	return &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    expiresAt,
		User: &domain.AuthUser{
			ID:       tr.User.ID,
			Email:    tr.User.Email,
			FullName: tr.User.UserMetadata.FullName,
		},
	}
}

func parseClaims(accessToken string) jwt.MapClaims {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetSession returns the current session, refreshing it via the refresh
// token when the access token has expired. Returns nil when signed out.
func (a *AuthClient) GetSession(ctx context.Context) (*domain.Session, error) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return nil, nil
	}
	if time.Until(session.ExpiresAt) > 30*time.Second {
		return session, nil
	}

	refreshed, err := a.refresh(ctx, session.RefreshToken)
	if err != nil {
		a.logger.Warn("gotrue: session refresh failed", zap.Error(err))
		a.setSession(nil)
		return nil, nil
	}

	a.setSession(refreshed)
	return refreshed, nil
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "GoTrue.SignInWithPassword")
	defer span.End()

	body, status, err := a.doAuth(ctx, http.MethodPost, "token?grant_type=password", map[string]any{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: err}
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, &domain.ErrUnauthorized{Message: "invalid login credentials"}
	}
	if status < 200 || status >= 300 {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: fmt.Errorf("token endpoint returned %d: %s", status, body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: fmt.Errorf("decode token response: %w", err)}
	}

	session := tr.toSession()
	a.setSession(session)
	return session, nil
}

// SignUp creates an account. When email confirmation is required the
// response carries no access token and the returned session is nil.
func (a *AuthClient) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "GoTrue.SignUp")
	defer span.End()

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if meta.FullName != "" {
		payload["data"] = map[string]any{"full_name": meta.FullName}
	}

	body, status, err := a.doAuth(ctx, http.MethodPost, "signup", payload, "")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: err}
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusConflict {
		return nil, &domain.ErrConflict{Message: "an account with this email already exists"}
	}
	if status < 200 || status >= 300 {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: fmt.Errorf("signup endpoint returned %d: %s", status, body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &domain.ErrExternalService{Service: "gotrue", Err: fmt.Errorf("decode signup response: %w", err)}
	}

	if tr.AccessToken == "" {
		return nil, nil // pending confirmation, no session yet
	}

	session := tr.toSession()
	a.setSession(session)
	return session, nil
}

// SignOut revokes the current session server-side and drops it locally.
// The local session is dropped even when revocation fails.
func (a *AuthClient) SignOut(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "GoTrue.SignOut")
	defer span.End()

	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return nil
	}

	_, status, err := a.doAuth(ctx, http.MethodPost, "logout", nil, session.AccessToken)
	a.setSession(nil)

	if err != nil {
		a.logger.Warn("gotrue: logout request failed", zap.Error(err))
		return nil
	}
	if (status < 200 || status >= 300) && status != http.StatusUnauthorized {
		a.logger.Warn("gotrue: logout non-2xx", zap.Int("status", status))
	}
	return nil
}

// UpdateUser applies attribute updates (password, email) to the
// authenticated user.
func (a *AuthClient) UpdateUser(ctx context.Context, attrs domain.UserAttributes) error {
	ctx, span := tracer.Start(ctx, "GoTrue.UpdateUser")
	defer span.End()

	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return &domain.ErrUnauthorized{Message: "no active session"}
	}

	payload := map[string]any{}
	if attrs.Password != "" {
		payload["password"] = attrs.Password
	}
	if attrs.Email != "" {
		payload["email"] = attrs.Email
	}

	body, status, err := a.doAuth(ctx, http.MethodPut, "user", payload, session.AccessToken)
	if err != nil {
		return &domain.ErrExternalService{Service: "gotrue", Err: err}
	}
	if status == http.StatusUnauthorized {
		return &domain.ErrUnauthorized{Message: "session expired"}
	}
	if status < 200 || status >= 300 {
		return &domain.ErrExternalService{Service: "gotrue", Err: fmt.Errorf("user endpoint returned %d: %s", status, body)}
	}
	return nil
}

// OnAuthStateChange registers fn to run after every session change.
func (a *AuthClient) OnAuthStateChange(fn func(session *domain.Session)) (unsubscribe func()) {
	a.cbMu.Lock()
	id := a.nextCbID
	a.nextCbID++
	a.callbacks[id] = fn
	a.cbMu.Unlock()

	return func() {
		a.cbMu.Lock()
		delete(a.callbacks, id)
		a.cbMu.Unlock()
	}
}

func (a *AuthClient) refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token")
	}

	body, status, err := a.doAuth(ctx, http.MethodPost, "token?grant_type=refresh_token", map[string]any{
		"refresh_token": refreshToken,
	}, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("refresh returned %d: %s", status, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	return tr.toSession(), nil
}

func (a *AuthClient) setSession(session *domain.Session) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	a.notify(session)
}

func (a *AuthClient) notify(session *domain.Session) {
	a.cbMu.Lock()
	fns := make([]func(*domain.Session), 0, len(a.callbacks))
	for _, fn := range a.callbacks {
		fns = append(fns, fn)
	}
	a.cbMu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}

// doAuth executes a request against the GoTrue API. The bearer token is
// the user's access token when set, the anon key otherwise.
func (a *AuthClient) doAuth(ctx context.Context, method, path string, payload any, accessToken string) ([]byte, int, error) {
	url := fmt.Sprintf("%s/auth/v1/%s", a.baseURL, path)

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	} else {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("gotrue: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	a.logger.Debug("gotrue: request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, resp.StatusCode, nil
}
