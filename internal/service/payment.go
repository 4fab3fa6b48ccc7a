package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/ids"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/store"
)

// PaymentService manages milestone disbursement records.
type PaymentService struct {
	store *store.Indexed
}

// CreatePaymentInput is the payment request payload.
type CreatePaymentInput struct {
	OrganizationID string
	BatchID        string
	MilestoneType  string
	Amount         int64
	DueDate        time.Time
}

func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (model.Payment, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Payment{}, err
	}
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	in.BatchID = strings.TrimSpace(in.BatchID)
	in.MilestoneType = strings.TrimSpace(in.MilestoneType)
	if in.OrganizationID == "" || in.BatchID == "" {
		return model.Payment{}, invalidf("organization_id and batch_id are required")
	}
	if in.MilestoneType == "" {
		return model.Payment{}, invalidf("milestone_type is required")
	}
	if in.Amount <= 0 {
		return model.Payment{}, invalidf("amount must be positive")
	}
	if err := authorize(actor, auth.ResourcePayment, auth.OwnerRefs{OrganizationID: in.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Payment{}, err
	}

	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, in.BatchID, &batch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Payment{}, invalidf("batch %s does not exist", in.BatchID)
		}
		return model.Payment{}, err
	}
	if batch.OrganizationID != in.OrganizationID {
		return model.Payment{}, invalidf("batch %s does not belong to organization %s", in.BatchID, in.OrganizationID)
	}

	now := nowUTC()
	payment := model.Payment{
		ID:             ids.New(),
		OrganizationID: in.OrganizationID,
		BatchID:        in.BatchID,
		MilestoneType:  in.MilestoneType,
		Amount:         in.Amount,
		Status:         model.PaymentPending,
		DueDate:        in.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, &payment); err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (model.Payment, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Payment{}, err
	}
	var payment model.Payment
	if err := s.store.Get(ctx, model.KindPayment, id, &payment); err != nil {
		return model.Payment{}, err
	}
	if err := authorize(actor, auth.ResourcePayment, auth.OwnerRefs{OrganizationID: payment.OrganizationID}, auth.ActionRead); err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context) ([]model.Payment, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	var recs []model.Record
	switch actor.Role {
	case auth.RolePlatformAdmin, auth.RoleAuditor:
		recs, err = s.store.List(ctx, model.KindPayment)
	case auth.RolePartnerOrg:
		recs, err = s.store.ListByIndex(ctx, model.KindPayment, "organization", actor.OrganizationID)
	default:
		return nil, auth.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.Payment, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.(*model.Payment))
	}
	return out, nil
}

// Transition applies approve, mark_paid or reject. Marking paid stamps the
// paid date. An approved payment cannot return to pending; the tables have no
// such edge.
func (s *PaymentService) Transition(ctx context.Context, id string, action lifecycle.Action) (model.Payment, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Payment{}, err
	}
	var payment model.Payment
	if err := s.store.Get(ctx, model.KindPayment, id, &payment); err != nil {
		return model.Payment{}, err
	}
	if err := authorize(actor, auth.ResourcePayment, auth.OwnerRefs{OrganizationID: payment.OrganizationID}, auth.Action(action)); err != nil {
		return model.Payment{}, err
	}

	next, err := lifecycle.Apply(lifecycle.MachinePayment, payment.Status, action, actor.Role)
	if err != nil {
		return model.Payment{}, err
	}
	now := nowUTC()
	payment.Status = next
	payment.UpdatedAt = now
	if action == lifecycle.ActionMarkPaid {
		payment.PaidDate = &now
	}
	if err := s.store.Put(ctx, &payment); err != nil {
		return model.Payment{}, err
	}
	return payment, nil
}

// Delete removes the primary record and all its index copies. Admin only.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	var payment model.Payment
	if err := s.store.Get(ctx, model.KindPayment, id, &payment); err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourcePayment, auth.OwnerRefs{OrganizationID: payment.OrganizationID}, auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindPayment, id)
}
