package auth

import "strings"

// Role is the coarse identity class attached to every token.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RolePartnerOrg    Role = "partner_org"
	RoleStudent       Role = "student"
	RoleEmployer      Role = "employer"
	RoleAuditor       Role = "auditor"
)

// Subtype refines platform_admin and partner_org. Other roles carry none.
type Subtype string

const (
	SubtypeSuperAdmin     Subtype = "super_admin"
	SubtypeDepartmentUser Subtype = "department_user"
	SubtypeOrgAdmin       Subtype = "org_admin"
	SubtypeOrgStaff       Subtype = "org_staff"
)

// Actor is the verified identity attached to a request. Immutable for the
// lifetime of a token.
type Actor struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	Subtype        Subtype `json:"subtype,omitempty"`
	OrganizationID string  `json:"organization_id,omitempty"`
}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RolePlatformAdmin:
		return RolePlatformAdmin, true
	case RolePartnerOrg:
		return RolePartnerOrg, true
	case RoleStudent:
		return RoleStudent, true
	case RoleEmployer:
		return RoleEmployer, true
	case RoleAuditor:
		return RoleAuditor, true
	default:
		return "", false
	}
}

// ValidSubtype reports whether the subtype is legal for the role.
func ValidSubtype(role Role, subtype Subtype) bool {
	switch subtype {
	case "":
		return true
	case SubtypeSuperAdmin, SubtypeDepartmentUser:
		return role == RolePlatformAdmin
	case SubtypeOrgAdmin, SubtypeOrgStaff:
		return role == RolePartnerOrg
	default:
		return false
	}
}
