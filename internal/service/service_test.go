package service

import (
	"context"
	"testing"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/store"
	"skillbridge.org/internal/store/memory"
	"skillbridge.org/internal/verify"
)

var (
	adminActor = auth.Actor{ID: "acct-admin", Email: "admin@example.com", Role: auth.RolePlatformAdmin, Subtype: auth.SubtypeSuperAdmin}
	deptActor  = auth.Actor{ID: "acct-dept", Email: "dept@example.com", Role: auth.RolePlatformAdmin, Subtype: auth.SubtypeDepartmentUser}
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	return New(store.NewIndexed(memory.New()), nil)
}

func actorCtx(actor auth.Actor) context.Context {
	return auth.ContextWithActor(context.Background(), actor)
}

func partnerActor(orgID string) auth.Actor {
	return auth.Actor{ID: "acct-" + orgID, Email: orgID + "@example.com", Role: auth.RolePartnerOrg, Subtype: auth.SubtypeOrgAdmin, OrganizationID: orgID}
}

// activeOrg registers and approves an organization.
func activeOrg(t *testing.T, svc *Services, email string) model.Organization {
	t.Helper()
	org, err := svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Training Partner",
		Email: email,
		TaxID: "TAX-001",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	org, err = svc.Organizations.Transition(actorCtx(adminActor), org.ID, lifecycle.ActionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return org
}

func newStudent(t *testing.T, svc *Services, email, orgID string) model.Student {
	t.Helper()
	student, err := svc.Students.Create(actorCtx(adminActor), CreateStudentInput{
		Email:          email,
		Name:           "Trainee",
		OrganizationID: orgID,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return student
}

func newBatch(t *testing.T, svc *Services, orgID string, capacity int) model.Batch {
	t.Helper()
	batch, err := svc.Batches.Create(actorCtx(adminActor), CreateBatchInput{
		OrganizationID: orgID,
		Course:         "Welding",
		Capacity:       capacity,
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	return batch
}

// staticVerifier wires services with a canned identity verifier.
func staticVerifier(t *testing.T, v verify.Verifier) *Services {
	t.Helper()
	return New(store.NewIndexed(memory.New()), v)
}
