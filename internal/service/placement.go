package service

import (
	"context"
	"errors"
	"strings"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/ids"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/store"
)

// PlacementService manages job placements. A placement has two owner
// references (student and employer) and two independent state axes.
type PlacementService struct {
	store *store.Indexed
}

// OfferPlacementInput is the placement offer payload.
type OfferPlacementInput struct {
	StudentID  string
	BatchID    string
	EmployerID string
	JobTitle   string
}

// Offer creates a placement in offered/pending. An employer may only offer on
// behalf of its own organization.
func (s *PlacementService) Offer(ctx context.Context, in OfferPlacementInput) (model.Placement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Placement{}, err
	}
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.BatchID = strings.TrimSpace(in.BatchID)
	in.EmployerID = strings.TrimSpace(in.EmployerID)
	if actor.Role == auth.RoleEmployer && in.EmployerID == "" {
		in.EmployerID = actor.OrganizationID
	}
	if in.StudentID == "" || in.BatchID == "" || in.EmployerID == "" {
		return model.Placement{}, invalidf("student_id, batch_id and employer_id are required")
	}
	refs := auth.OwnerRefs{StudentID: "", EmployerID: in.EmployerID}
	if err := authorize(actor, auth.ResourcePlacement, refs, auth.ActionWrite); err != nil {
		return model.Placement{}, err
	}

	var student model.Student
	if err := s.store.Get(ctx, model.KindStudent, in.StudentID, &student); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Placement{}, invalidf("student %s does not exist", in.StudentID)
		}
		return model.Placement{}, err
	}
	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, in.BatchID, &batch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Placement{}, invalidf("batch %s does not exist", in.BatchID)
		}
		return model.Placement{}, err
	}

	now := nowUTC()
	placement := model.Placement{
		ID:                 ids.New(),
		StudentID:          in.StudentID,
		BatchID:            in.BatchID,
		EmployerID:         in.EmployerID,
		JobTitle:           strings.TrimSpace(in.JobTitle),
		Status:             model.PlacementOffered,
		VerificationStatus: model.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Put(ctx, &placement); err != nil {
		return model.Placement{}, err
	}
	return placement, nil
}

func (s *PlacementService) Get(ctx context.Context, id string) (model.Placement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Placement{}, err
	}
	var placement model.Placement
	if err := s.store.Get(ctx, model.KindPlacement, id, &placement); err != nil {
		return model.Placement{}, err
	}
	refs, err := s.placementRefs(ctx, placement)
	if err != nil {
		return model.Placement{}, err
	}
	if err := authorize(actor, auth.ResourcePlacement, refs, auth.ActionRead); err != nil {
		return model.Placement{}, err
	}
	return placement, nil
}

// List scopes by role: student and employer see their own placements, a
// partner org the placements of its batches, admins and auditors everything.
func (s *PlacementService) List(ctx context.Context) ([]model.Placement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RolePlatformAdmin, auth.RoleAuditor:
		recs, err := s.store.List(ctx, model.KindPlacement)
		if err != nil {
			return nil, err
		}
		return placementSlice(recs), nil
	case auth.RoleStudent:
		recs, err := s.store.ListByIndex(ctx, model.KindPlacement, "student", actor.ID)
		if err != nil {
			return nil, err
		}
		return placementSlice(recs), nil
	case auth.RoleEmployer:
		recs, err := s.store.ListByIndex(ctx, model.KindPlacement, "employer", actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		return placementSlice(recs), nil
	case auth.RolePartnerOrg:
		batches, err := s.store.ListByIndex(ctx, model.KindBatch, "organization", actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		var out []model.Placement
		for _, b := range batches {
			recs, err := s.store.ListByIndex(ctx, model.KindPlacement, "batch", b.RecordID())
			if err != nil {
				return nil, err
			}
			out = append(out, placementSlice(recs)...)
		}
		return out, nil
	default:
		return nil, auth.ErrForbidden
	}
}

// Transition applies an offer-axis action: accept, reject or complete.
func (s *PlacementService) Transition(ctx context.Context, id string, action lifecycle.Action) (model.Placement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Placement{}, err
	}
	var placement model.Placement
	if err := s.store.Get(ctx, model.KindPlacement, id, &placement); err != nil {
		return model.Placement{}, err
	}
	refs, err := s.placementRefs(ctx, placement)
	if err != nil {
		return model.Placement{}, err
	}
	// Offer-axis moves are writes on the record; the lifecycle tables then
	// decide which role may trigger which move.
	if err := authorize(actor, auth.ResourcePlacement, refs, auth.ActionWrite); err != nil {
		return model.Placement{}, err
	}

	next, err := lifecycle.Apply(lifecycle.MachinePlacement, placement.Status, action, actor.Role)
	if err != nil {
		return model.Placement{}, err
	}
	placement.Status = next
	placement.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &placement); err != nil {
		return model.Placement{}, err
	}
	return placement, nil
}

// VerificationTransition applies verify or reject on the verification axis.
// Verification success forces the offer axis to completed.
func (s *PlacementService) VerificationTransition(ctx context.Context, id string, action lifecycle.Action) (model.Placement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Placement{}, err
	}
	var placement model.Placement
	if err := s.store.Get(ctx, model.KindPlacement, id, &placement); err != nil {
		return model.Placement{}, err
	}
	refs, err := s.placementRefs(ctx, placement)
	if err != nil {
		return model.Placement{}, err
	}
	authAction := auth.ActionVerify
	if action == lifecycle.ActionReject {
		authAction = auth.ActionReject
	}
	if err := authorize(actor, auth.ResourcePlacement, refs, authAction); err != nil {
		return model.Placement{}, err
	}

	next, err := lifecycle.Apply(lifecycle.MachinePlacementVerification, placement.VerificationStatus, action, actor.Role)
	if err != nil {
		return model.Placement{}, err
	}
	placement.VerificationStatus = next
	if action == lifecycle.ActionVerify {
		placement.Status = model.PlacementCompleted
	}
	placement.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &placement); err != nil {
		return model.Placement{}, err
	}
	return placement, nil
}

// Delete removes the primary record and all its index copies. Admin only.
func (s *PlacementService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	var placement model.Placement
	if err := s.store.Get(ctx, model.KindPlacement, id, &placement); err != nil {
		return err
	}
	refs, err := s.placementRefs(ctx, placement)
	if err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourcePlacement, refs, auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindPlacement, id)
}

// placementRefs resolves all owner references: both direct owners plus the
// organization owning the batch, so partner orgs can read their batches'
// placements.
func (s *PlacementService) placementRefs(ctx context.Context, placement model.Placement) (auth.OwnerRefs, error) {
	refs := auth.OwnerRefs{StudentID: placement.StudentID, EmployerID: placement.EmployerID}
	if placement.BatchID != "" {
		var batch model.Batch
		err := s.store.Get(ctx, model.KindBatch, placement.BatchID, &batch)
		if err == nil {
			refs.OrganizationID = batch.OrganizationID
		} else if !errors.Is(err, store.ErrNotFound) {
			return auth.OwnerRefs{}, err
		}
	}
	return refs, nil
}

func placementSlice(recs []model.Record) []model.Placement {
	out := make([]model.Placement, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.(*model.Placement))
	}
	return out
}
