package auth

// Resource names an access-controlled record family.
type Resource string

const (
	ResourceOrganization Resource = "organization"
	ResourceBatch        Resource = "batch"
	ResourcePayment      Resource = "payment"
	ResourcePlacement    Resource = "placement"
	ResourceStudent      Resource = "student"
	ResourceAccount      Resource = "account"
	ResourceConfig       Resource = "config"
)

// Action is the operation being attempted. Lifecycle transition endpoints map
// onto these: offer accept/reject/complete are writes on the placement (the
// lifecycle engine further gates them by role); verification verify/reject
// are the distinct verify/reject actions below.
type Action string

const (
	ActionRead       Action = "read"
	ActionWrite      Action = "write"
	ActionDelete     Action = "delete"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionSuspend    Action = "suspend"
	ActionVerify     Action = "verify"
	ActionMarkPaid   Action = "mark_paid"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// OwnerRefs carries the resolved owner reference(s) of the resource under
// decision. Callers resolve them from the record before asking; CanAccess
// itself never touches storage. A placement populates both StudentID and
// EmployerID and is accessible through either.
type OwnerRefs struct {
	OrganizationID string
	StudentID      string
	EmployerID     string
}

type scopeFn func(Actor, OwnerRefs) bool

func scopeAny(Actor, OwnerRefs) bool { return true }

func scopeOwnOrg(a Actor, refs OwnerRefs) bool {
	return a.OrganizationID != "" && a.OrganizationID == refs.OrganizationID
}

func scopeSelf(a Actor, refs OwnerRefs) bool {
	return a.ID != "" && a.ID == refs.StudentID
}

func scopeEmployerOrg(a Actor, refs OwnerRefs) bool {
	return a.OrganizationID != "" && a.OrganizationID == refs.EmployerID
}

// scopeEitherOwner admits a student matching the student reference or an
// employer matching the employer reference. Used for placements only.
func scopeEitherOwner(a Actor, refs OwnerRefs) bool {
	switch a.Role {
	case RoleStudent:
		return scopeSelf(a, refs)
	case RoleEmployer:
		return scopeEmployerOrg(a, refs)
	default:
		return false
	}
}

type rolePolicy struct {
	actions map[Action]bool
	scope   scopeFn
}

func allow(scope scopeFn, actions ...Action) rolePolicy {
	set := make(map[Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return rolePolicy{actions: set, scope: scope}
}

// policy is the fixed per-role matrix. Roles absent from a resource's row are
// denied every action on it.
var policy = map[Resource]map[Role]rolePolicy{
	ResourceOrganization: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite, ActionApprove, ActionReject, ActionSuspend, ActionDelete),
		RolePartnerOrg:    allow(scopeOwnOrg, ActionRead, ActionWrite),
		RoleAuditor:       allow(scopeAny, ActionRead),
	},
	ResourceBatch: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite, ActionDelete, ActionStart, ActionComplete, ActionCancel),
		RolePartnerOrg:    allow(scopeOwnOrg, ActionRead, ActionWrite, ActionStart, ActionComplete),
		RoleStudent:       allow(scopeSelf, ActionRead),
		RoleAuditor:       allow(scopeAny, ActionRead),
	},
	ResourcePayment: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite, ActionApprove, ActionReject, ActionMarkPaid, ActionDelete),
		RolePartnerOrg:    allow(scopeOwnOrg, ActionRead),
		RoleAuditor:       allow(scopeAny, ActionRead),
	},
	ResourcePlacement: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite, ActionVerify, ActionReject, ActionDelete),
		RolePartnerOrg:    allow(scopeOwnOrg, ActionRead),
		RoleStudent:       allow(scopeEitherOwner, ActionRead, ActionWrite),
		RoleEmployer:      allow(scopeEitherOwner, ActionRead, ActionWrite),
		RoleAuditor:       allow(scopeAny, ActionRead),
	},
	ResourceStudent: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite, ActionDelete),
		RolePartnerOrg:    allow(scopeOwnOrg, ActionRead, ActionWrite),
		RoleStudent:       allow(scopeSelf, ActionRead, ActionWrite),
		RoleAuditor:       allow(scopeAny, ActionRead),
	},
	ResourceAccount: {
		RolePlatformAdmin: allow(scopeAny, ActionRead, ActionWrite),
	},
	ResourceConfig: {
		RolePlatformAdmin: allow(scopeAny, ActionRead),
	},
}

// superAdminOnly lists the (resource, action) pairs reserved for the
// super_admin subtype; a department_user platform admin is denied these even
// though the role row would otherwise admit them.
var superAdminOnly = map[Resource]map[Action]bool{
	ResourceAccount: {ActionActivate: true, ActionDeactivate: true, ActionDelete: true},
	ResourceConfig:  {ActionWrite: true},
}

// CanAccess is the single authorization decision for the whole API. It is
// pure and total: any (actor, resource, refs, action) combination yields a
// verdict, an unauthenticated actor (empty role) is always denied, and
// storage is never consulted.
func CanAccess(actor Actor, resource Resource, refs OwnerRefs, action Action) bool {
	if actor.Role == "" {
		return false
	}

	if gated, ok := superAdminOnly[resource]; ok && gated[action] {
		return actor.Role == RolePlatformAdmin && actor.Subtype == SubtypeSuperAdmin
	}

	row, ok := policy[resource]
	if !ok {
		return false
	}
	rp, ok := row[actor.Role]
	if !ok {
		return false
	}
	if !rp.actions[action] {
		return false
	}
	return rp.scope(actor, refs)
}
