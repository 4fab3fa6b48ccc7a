// Package lifecycle declares, per entity type, which state transitions exist
// and which roles may trigger them. Apply validates a requested transition;
// it never touches storage; callers persist the result after acceptance.
package lifecycle

import (
	"errors"
	"fmt"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/model"
)

// ErrIllegalTransition is returned for any (state, action, role) combination
// the tables below do not declare. Handlers map it to 409.
var ErrIllegalTransition = errors.New("lifecycle: illegal transition")

// Machine selects a state machine. A placement record carries two independent
// machines: the offer axis and the verification axis are validated separately
// so the joint state space never needs enumerating.
type Machine string

const (
	MachineOrganization          Machine = "organization"
	MachineBatch                 Machine = "batch"
	MachinePayment               Machine = "payment"
	MachinePlacement             Machine = "placement"
	MachinePlacementVerification Machine = "placement_verification"
)

// Action is a named transition trigger.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSuspend  Action = "suspend"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionMarkPaid Action = "mark_paid"
	ActionAccept   Action = "accept"
	ActionVerify   Action = "verify"
)

type transition struct {
	from   string
	action Action
	to     string
	roles  []auth.Role
}

var (
	adminOnly    = []auth.Role{auth.RolePlatformAdmin}
	adminOrOwner = []auth.Role{auth.RolePlatformAdmin, auth.RolePartnerOrg}
)

// transitions is the complete legal set. Anything absent is illegal; in
// particular there is no transition out of a suspended or rejected
// organization, and an approved payment cannot return to pending.
var transitions = map[Machine][]transition{
	MachineOrganization: {
		{model.OrgPending, ActionApprove, model.OrgActive, adminOnly},
		{model.OrgPending, ActionReject, model.OrgRejected, adminOnly},
		{model.OrgActive, ActionSuspend, model.OrgSuspended, adminOnly},
	},
	MachineBatch: {
		{model.BatchUpcoming, ActionStart, model.BatchOngoing, adminOrOwner},
		{model.BatchOngoing, ActionComplete, model.BatchCompleted, adminOrOwner},
		{model.BatchUpcoming, ActionCancel, model.BatchCancelled, adminOnly},
		{model.BatchOngoing, ActionCancel, model.BatchCancelled, adminOnly},
	},
	MachinePayment: {
		{model.PaymentPending, ActionApprove, model.PaymentApproved, adminOnly},
		{model.PaymentApproved, ActionMarkPaid, model.PaymentPaid, adminOnly},
		{model.PaymentPending, ActionReject, model.PaymentRejected, adminOnly},
	},
	MachinePlacement: {
		{model.PlacementOffered, ActionAccept, model.PlacementAccepted, []auth.Role{auth.RolePlatformAdmin, auth.RoleStudent}},
		{model.PlacementOffered, ActionReject, model.PlacementRejected, []auth.Role{auth.RolePlatformAdmin, auth.RoleStudent}},
		{model.PlacementAccepted, ActionComplete, model.PlacementCompleted, []auth.Role{auth.RolePlatformAdmin, auth.RoleEmployer}},
	},
	MachinePlacementVerification: {
		{model.VerificationPending, ActionVerify, model.VerificationVerified, adminOnly},
		{model.VerificationPending, ActionReject, model.VerificationRejected, adminOnly},
	},
}

// Apply returns the state an entity moves to when role triggers action from
// current, or ErrIllegalTransition if the tables declare no such move for
// that role.
func Apply(machine Machine, current string, action Action, role auth.Role) (string, error) {
	for _, t := range transitions[machine] {
		if t.from != current || t.action != action {
			continue
		}
		for _, r := range t.roles {
			if r == role {
				return t.to, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s %q cannot %s as %s", ErrIllegalTransition, machine, current, action, role)
}

// Actions lists the actions that exist for a machine, for validation of
// request paths before touching the record.
func Actions(machine Machine) []Action {
	seen := map[Action]bool{}
	var out []Action
	for _, t := range transitions[machine] {
		if !seen[t.action] {
			seen[t.action] = true
			out = append(out, t.action)
		}
	}
	return out
}
