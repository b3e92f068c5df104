package domain

import "time"

// Role distinguishes dashboard administrators from plain accounts.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserProfile is a row of the users table, keyed by the auth user id.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile grants dashboard access.
// Both conditions are required: an inactive admin is a non-admin.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin && p.IsActive
}

// AuthUser is the identity object returned by the auth backend.
type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Session is an authenticated session as issued by the auth backend.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *AuthUser `json:"user"`
}

// SignUpMetadata carries optional attributes for account creation.
type SignUpMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// UserAttributes is a partial update for the authenticated user,
// mirroring the backend's updateUser call.
type UserAttributes struct {
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}
