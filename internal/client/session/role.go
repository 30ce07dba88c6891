package session

import (
	"fmt"
	"strings"
)

// Role is the closed set of console roles.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// ParseRole accepts the role names issued by the server, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Capability names one thing a signed-in user may do.
type Capability string

const (
	CapViewContent      Capability = "content:view"
	CapManageContent    Capability = "content:manage"
	CapManageMembership Capability = "membership:manage"
	CapManageDonations  Capability = "donations:manage"
	CapManageVolunteers Capability = "volunteers:manage"
	CapManagePartners   Capability = "partners:manage"
	CapManageNewsletter Capability = "newsletter:manage"
	CapManageUsers      Capability = "users:manage"
	CapChangePassword   Capability = "account:password"
)

var (
	memberCaps = []Capability{CapViewContent, CapChangePassword}

	adminCaps = append(append([]Capability{}, memberCaps...),
		CapManageContent,
		CapManageMembership,
		CapManageDonations,
		CapManageVolunteers,
		CapManagePartners,
		CapManageNewsletter,
	)

	superAdminCaps = append(append([]Capability{}, adminCaps...), CapManageUsers)
)

var permissions = map[Role]map[Capability]struct{}{
	RoleMember:     capSet(memberCaps),
	RoleAdmin:      capSet(adminCaps),
	RoleSuperAdmin: capSet(superAdminCaps),
}

func capSet(caps []Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return m
}

// Can reports whether role grants capability.
func Can(role Role, c Capability) bool {
	_, ok := permissions[role][c]
	return ok
}
