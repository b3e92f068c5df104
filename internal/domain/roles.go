package domain

import "strings"

// adminDomain and adminAddress define which emails get the admin role.
// This is a business rule for the internal dashboard, not a security
// boundary: the backend's row-level policies own real authorization.
const (
	adminDomain  = "@zenthra.com"
	adminAddress = "team.zenthra@gmail.com"
)

// DeriveRole maps an email address to the role a freshly created profile
// receives: accounts on the corporate domain, plus the shared team inbox,
// are administrators; everyone else is a plain user.
func DeriveRole(email string) Role {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == adminAddress || strings.HasSuffix(email, adminDomain) {
		return RoleAdmin
	}
	return RoleUser
}
