package service

import (
	"context"
	"errors"
	"testing"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/verify"
)

func TestRegisterOrganization(t *testing.T) {
	svc := newTestServices(t)

	org, err := svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Partner One",
		Email: "Ops@Partner.example",
		TaxID: "TAX-1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if org.Status != model.OrgPending {
		t.Fatalf("new organization status = %s, want pending", org.Status)
	}
	if org.Email != "ops@partner.example" {
		t.Fatalf("email not normalized: %s", org.Email)
	}

	// second registration on the same email
	_, err = svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Partner Clone",
		Email: "ops@partner.example",
		TaxID: "TAX-2",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: expected ErrConflict, got %v", err)
	}
}

func TestRegisterOrganizationValidation(t *testing.T) {
	svc := newTestServices(t)
	cases := []RegisterOrganizationInput{
		// missing name, missing email, bad email, no identifier
		{Email: "a@b.c", TaxID: "T"},
		{Name: "X", TaxID: "T"},
		{Name: "X", Email: "not-an-email", TaxID: "T"},
		{Name: "X", Email: "a@b.c"},
	}
	for i, in := range cases {
		if _, err := svc.Organizations.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestRegisterOrganizationVerifierGate(t *testing.T) {
	svc := staticVerifier(t, &verify.Static{Profiles: map[string]verify.Profile{
		"TAX-OK": {LegalName: "Registered Legal Name"},
	}})

	org, err := svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Trade Name",
		Email: "ok@partner.example",
		TaxID: "TAX-OK",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if org.Name != "Registered Legal Name" {
		t.Fatalf("verified legal name must win, got %s", org.Name)
	}

	_, err = svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Unknown",
		Email: "bad@partner.example",
		TaxID: "TAX-UNKNOWN",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("rejected identifier: expected ErrValidation, got %v", err)
	}
}

func TestOrganizationApproval(t *testing.T) {
	svc := newTestServices(t)
	org, err := svc.Organizations.Register(context.Background(), RegisterOrganizationInput{
		Name:  "Partner",
		Email: "p@example.com",
		TaxID: "T-1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// the org itself cannot self-approve
	_, err = svc.Organizations.Transition(actorCtx(partnerActor(org.ID)), org.ID, lifecycle.ActionApprove)
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("self-approve: expected ErrForbidden, got %v", err)
	}

	approved, err := svc.Organizations.Transition(actorCtx(adminActor), org.ID, lifecycle.ActionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.OrgActive {
		t.Fatalf("status = %s, want active", approved.Status)
	}
	if approved.ApprovedBy != adminActor.ID || approved.ApprovedAt == nil {
		t.Fatal("approval must stamp approved_by and approved_at")
	}

	// approving twice is illegal
	_, err = svc.Organizations.Transition(actorCtx(adminActor), org.ID, lifecycle.ActionApprove)
	if !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("second approve: expected ErrIllegalTransition, got %v", err)
	}
}

func TestOrganizationScopedReads(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "one@example.com")
	other := activeOrg(t, svc, "two@example.com")

	if _, err := svc.Organizations.Get(actorCtx(partnerActor(org.ID)), org.ID); err != nil {
		t.Fatalf("own read: %v", err)
	}
	if _, err := svc.Organizations.Get(actorCtx(partnerActor(org.ID)), other.ID); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("cross read: expected ErrForbidden, got %v", err)
	}

	mine, err := svc.Organizations.List(actorCtx(partnerActor(org.ID)))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != org.ID {
		t.Fatalf("partner list = %d orgs", len(mine))
	}

	all, err := svc.Organizations.List(actorCtx(adminActor))
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list = %d orgs, want 2", len(all))
	}
}

func TestOrganizationUpdateAndDelete(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "upd@example.com")

	name := "Renamed Partner"
	updated, err := svc.Organizations.Update(actorCtx(partnerActor(org.ID)), org.ID, OrganizationUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name = %s", updated.Name)
	}

	// delete is admin-only
	if err := svc.Organizations.Delete(actorCtx(partnerActor(org.ID)), org.ID); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("partner delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Organizations.Delete(actorCtx(adminActor), org.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Organizations.Get(actorCtx(adminActor), org.ID); err == nil {
		t.Fatal("deleted organization must not resolve")
	}
}

func TestOrganizationRequiresActor(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "anon@example.com")
	if _, err := svc.Organizations.Get(context.Background(), org.ID); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("anonymous read: expected ErrUnauthorized, got %v", err)
	}
}
