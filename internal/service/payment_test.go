package service

import (
	"errors"
	"testing"
	"time"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
)

func newPayment(t *testing.T, svc *Services, orgID, batchID string) model.Payment {
	t.Helper()
	payment, err := svc.Payments.Create(actorCtx(adminActor), CreatePaymentInput{
		OrganizationID: orgID,
		BatchID:        batchID,
		MilestoneType:  "batch_completion",
		Amount:         250_000,
		DueDate:        time.Now().UTC().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return payment
}

func TestPaymentCreateValidation(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "pay@example.com")
	batch := newBatch(t, svc, org.ID, 10)
	ctx := actorCtx(adminActor)

	if _, err := svc.Payments.Create(ctx, CreatePaymentInput{
		OrganizationID: org.ID, BatchID: batch.ID, MilestoneType: "enrollment",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Payments.Create(ctx, CreatePaymentInput{
		OrganizationID: org.ID, BatchID: "no-such-batch", MilestoneType: "enrollment", Amount: 100,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing batch: expected ErrValidation, got %v", err)
	}

	// A batch belonging to another organization cannot anchor the payment.
	other := activeOrg(t, svc, "pay-other@example.com")
	if _, err := svc.Payments.Create(ctx, CreatePaymentInput{
		OrganizationID: other.ID, BatchID: batch.ID, MilestoneType: "enrollment", Amount: 100,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("foreign batch: expected ErrValidation, got %v", err)
	}

	// Partner orgs can only read payments.
	if _, err := svc.Payments.Create(actorCtx(partnerActor(org.ID)), CreatePaymentInput{
		OrganizationID: org.ID, BatchID: batch.ID, MilestoneType: "enrollment", Amount: 100,
	}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("partner create: expected ErrForbidden, got %v", err)
	}
}

func TestPaymentApprovalFlow(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "flow@example.com")
	batch := newBatch(t, svc, org.ID, 10)
	payment := newPayment(t, svc, org.ID, batch.ID)
	ctx := actorCtx(adminActor)

	if payment.Status != model.PaymentPending {
		t.Fatalf("initial status = %s", payment.Status)
	}

	payment, err := svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if payment.Status != model.PaymentApproved {
		t.Fatalf("approved status = %s", payment.Status)
	}

	payment, err = svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionMarkPaid)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if payment.Status != model.PaymentPaid || payment.PaidDate == nil {
		t.Fatalf("paid: status=%s paidDate=%v", payment.Status, payment.PaidDate)
	}

	// Paid is terminal.
	if _, err := svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionReject); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("reject paid: expected ErrIllegalTransition, got %v", err)
	}
}

func TestPaymentRejectFromPendingOnly(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "rej@example.com")
	batch := newBatch(t, svc, org.ID, 10)
	payment := newPayment(t, svc, org.ID, batch.ID)
	ctx := actorCtx(adminActor)

	if _, err := svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionMarkPaid); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("mark paid without approval: expected ErrIllegalTransition, got %v", err)
	}

	payment, err := svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if payment.Status != model.PaymentRejected {
		t.Fatalf("rejected status = %s", payment.Status)
	}
	if _, err := svc.Payments.Transition(ctx, payment.ID, lifecycle.ActionApprove); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("approve rejected: expected ErrIllegalTransition, got %v", err)
	}
}

func TestPaymentTransitionsAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "gate@example.com")
	batch := newBatch(t, svc, org.ID, 10)
	payment := newPayment(t, svc, org.ID, batch.ID)

	if _, err := svc.Payments.Transition(actorCtx(partnerActor(org.ID)), payment.ID, lifecycle.ActionApprove); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("partner approve: expected ErrForbidden, got %v", err)
	}
}

func TestPaymentScopedReads(t *testing.T) {
	svc := newTestServices(t)
	org := activeOrg(t, svc, "scope@example.com")
	batch := newBatch(t, svc, org.ID, 10)
	payment := newPayment(t, svc, org.ID, batch.ID)

	ownCtx := actorCtx(partnerActor(org.ID))
	if _, err := svc.Payments.Get(ownCtx, payment.ID); err != nil {
		t.Fatalf("own read: %v", err)
	}
	if got, err := svc.Payments.List(ownCtx); err != nil || len(got) != 1 {
		t.Fatalf("own list: %v %d", err, len(got))
	}

	strangerCtx := actorCtx(partnerActor("org-elsewhere"))
	if _, err := svc.Payments.Get(strangerCtx, payment.ID); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("stranger read: expected ErrForbidden, got %v", err)
	}
	if got, err := svc.Payments.List(strangerCtx); err != nil || len(got) != 0 {
		t.Fatalf("stranger list: %v %d", err, len(got))
	}
}
