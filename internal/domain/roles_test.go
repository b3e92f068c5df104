package domain_test

import (
	"testing"

	"github.com/zenthra/zenthra-api/internal/domain"
)

func TestDeriveRole_CorporateDomain(t *testing.T) {
	cases := []string{
		"admin@zenthra.com",
		"demo@zenthra.com",
		"anyone.at.all@zenthra.com",
	}
	for _, email := range cases {
		if got := domain.DeriveRole(email); got != domain.RoleAdmin {
			t.Errorf("DeriveRole(%q) = %q, want admin", email, got)
		}
	}
}

func TestDeriveRole_TeamAddress(t *testing.T) {
	if got := domain.DeriveRole("team.zenthra@gmail.com"); got != domain.RoleAdmin {
		t.Errorf("DeriveRole(team address) = %q, want admin", got)
	}
}

func TestDeriveRole_PlainUsers(t *testing.T) {
	cases := []string{
		"someone@gmail.com",
		"zenthra.com@example.org", // domain as local part is not enough
		"team.zenthra@gmail.com.attacker.net",
		"",
	}
	for _, email := range cases {
		if got := domain.DeriveRole(email); got != domain.RoleUser {
			t.Errorf("DeriveRole(%q) = %q, want user", email, got)
		}
	}
}

func TestDeriveRole_NormalizesCaseAndSpace(t *testing.T) {
	if got := domain.DeriveRole("  Admin@Zenthra.COM "); got != domain.RoleAdmin {
		t.Errorf("DeriveRole with mixed case = %q, want admin", got)
	}
}

func TestUserProfile_IsAdmin(t *testing.T) {
	cases := []struct {
		name     string
		role     domain.Role
		isActive bool
		want     bool
	}{
		{"active admin", domain.RoleAdmin, true, true},
		{"inactive admin", domain.RoleAdmin, false, false},
		{"active user", domain.RoleUser, true, false},
		{"inactive user", domain.RoleUser, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &domain.UserProfile{Role: tc.role, IsActive: tc.isActive}
			if got := p.IsAdmin(); got != tc.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUserProfile_IsAdmin_NilReceiver(t *testing.T) {
	var p *domain.UserProfile
	if p.IsAdmin() {
		t.Error("nil profile must never be admin")
	}
}
