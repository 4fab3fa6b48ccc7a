package lifecycle

import (
	"errors"
	"testing"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/model"
)

func TestApplyLegalTransitions(t *testing.T) {
	cases := []struct {
		machine Machine
		from    string
		action  Action
		role    auth.Role
		want    string
	}{
		{MachineOrganization, model.OrgPending, ActionApprove, auth.RolePlatformAdmin, model.OrgActive},
		{MachineOrganization, model.OrgPending, ActionReject, auth.RolePlatformAdmin, model.OrgRejected},
		{MachineOrganization, model.OrgActive, ActionSuspend, auth.RolePlatformAdmin, model.OrgSuspended},
		{MachineBatch, model.BatchUpcoming, ActionStart, auth.RolePartnerOrg, model.BatchOngoing},
		{MachineBatch, model.BatchOngoing, ActionComplete, auth.RolePlatformAdmin, model.BatchCompleted},
		{MachineBatch, model.BatchOngoing, ActionCancel, auth.RolePlatformAdmin, model.BatchCancelled},
		{MachinePayment, model.PaymentPending, ActionApprove, auth.RolePlatformAdmin, model.PaymentApproved},
		{MachinePayment, model.PaymentApproved, ActionMarkPaid, auth.RolePlatformAdmin, model.PaymentPaid},
		{MachinePlacement, model.PlacementOffered, ActionAccept, auth.RoleStudent, model.PlacementAccepted},
		{MachinePlacement, model.PlacementOffered, ActionReject, auth.RoleStudent, model.PlacementRejected},
		{MachinePlacement, model.PlacementAccepted, ActionComplete, auth.RoleEmployer, model.PlacementCompleted},
		{MachinePlacementVerification, model.VerificationPending, ActionVerify, auth.RolePlatformAdmin, model.VerificationVerified},
		{MachinePlacementVerification, model.VerificationPending, ActionReject, auth.RolePlatformAdmin, model.VerificationRejected},
	}
	for _, c := range cases {
		got, err := Apply(c.machine, c.from, c.action, c.role)
		if err != nil {
			t.Fatalf("Apply(%s, %s, %s, %s): %v", c.machine, c.from, c.action, c.role, err)
		}
		if got != c.want {
			t.Fatalf("Apply(%s, %s, %s, %s) = %s, want %s", c.machine, c.from, c.action, c.role, got, c.want)
		}
	}
}

func TestApplyIllegalTransitions(t *testing.T) {
	cases := []struct {
		machine Machine
		from    string
		action  Action
		role    auth.Role
	}{
		// no way out of terminal states
		{MachineOrganization, model.OrgRejected, ActionApprove, auth.RolePlatformAdmin},
		{MachineOrganization, model.OrgSuspended, ActionApprove, auth.RolePlatformAdmin},
		{MachinePayment, model.PaymentRejected, ActionMarkPaid, auth.RolePlatformAdmin},
		{MachinePayment, model.PaymentPending, ActionMarkPaid, auth.RolePlatformAdmin},
		// role gating
		{MachineOrganization, model.OrgPending, ActionApprove, auth.RolePartnerOrg},
		{MachineBatch, model.BatchUpcoming, ActionCancel, auth.RolePartnerOrg},
		{MachinePlacement, model.PlacementOffered, ActionAccept, auth.RoleEmployer},
		{MachinePlacement, model.PlacementAccepted, ActionComplete, auth.RoleStudent},
		{MachinePlacementVerification, model.VerificationPending, ActionVerify, auth.RoleEmployer},
		// unknown action for machine
		{MachineBatch, model.BatchUpcoming, ActionApprove, auth.RolePlatformAdmin},
	}
	for _, c := range cases {
		if _, err := Apply(c.machine, c.from, c.action, c.role); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("Apply(%s, %s, %s, %s): expected ErrIllegalTransition, got %v", c.machine, c.from, c.action, c.role, err)
		}
	}
}

func TestActions(t *testing.T) {
	got := Actions(MachinePayment)
	want := map[Action]bool{ActionApprove: true, ActionMarkPaid: true, ActionReject: true}
	if len(got) != len(want) {
		t.Fatalf("Actions(payment) = %v", got)
	}
	for _, a := range got {
		if !want[a] {
			t.Fatalf("unexpected action %s", a)
		}
	}
}
