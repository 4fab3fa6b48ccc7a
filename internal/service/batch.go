package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/ids"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/store"
)

// BatchService manages training batches and enrollment.
type BatchService struct {
	store *store.Indexed

	// Enrollment serializes per batch id so the enrolled counter is never
	// read-modify-written concurrently. The store itself only guarantees
	// per-key last-write-wins.
	seqMu      sync.Mutex
	sequencers map[string]*sync.Mutex
}

// CreateBatchInput is the batch creation payload.
type CreateBatchInput struct {
	OrganizationID string
	CenterID       string
	Course         string
	Capacity       int
	StartDate      time.Time
	EndDate        time.Time
}

// BatchUpdate carries field-level edits; nil fields are untouched.
type BatchUpdate struct {
	CenterID *string
	Course   *string
	Capacity *int
}

func (s *BatchService) Create(ctx context.Context, in CreateBatchInput) (model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Batch{}, err
	}
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	if in.OrganizationID == "" {
		return model.Batch{}, invalidf("organization_id is required")
	}
	if in.Capacity <= 0 {
		return model.Batch{}, invalidf("capacity must be positive")
	}
	if !in.EndDate.IsZero() && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return model.Batch{}, invalidf("end_date precedes start_date")
	}
	if err := authorize(actor, auth.ResourceBatch, auth.OwnerRefs{OrganizationID: in.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Batch{}, err
	}

	var org model.Organization
	if err := s.store.Get(ctx, model.KindOrganization, in.OrganizationID, &org); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Batch{}, invalidf("organization %s does not exist", in.OrganizationID)
		}
		return model.Batch{}, err
	}
	if org.Status != model.OrgActive {
		return model.Batch{}, conflictf("organization %s is not active", org.ID)
	}

	now := nowUTC()
	batch := model.Batch{
		ID:             ids.New(),
		OrganizationID: in.OrganizationID,
		CenterID:       strings.TrimSpace(in.CenterID),
		Course:         strings.TrimSpace(in.Course),
		Capacity:       in.Capacity,
		Status:         model.BatchUpcoming,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, &batch); err != nil {
		return model.Batch{}, err
	}
	return batch, nil
}

func (s *BatchService) Get(ctx context.Context, id string) (model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Batch{}, err
	}
	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, id, &batch); err != nil {
		return model.Batch{}, err
	}
	if err := authorize(actor, auth.ResourceBatch, s.batchRefs(ctx, actor, batch), auth.ActionRead); err != nil {
		return model.Batch{}, err
	}
	return batch, nil
}

// List scopes by role: admins and auditors see everything, a partner org its
// own batches, a student the batch it is enrolled in.
func (s *BatchService) List(ctx context.Context) ([]model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RolePlatformAdmin, auth.RoleAuditor:
		recs, err := s.store.List(ctx, model.KindBatch)
		if err != nil {
			return nil, err
		}
		return batchSlice(recs), nil
	case auth.RolePartnerOrg:
		recs, err := s.store.ListByIndex(ctx, model.KindBatch, "organization", actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		return batchSlice(recs), nil
	case auth.RoleStudent:
		var student model.Student
		if err := s.store.Get(ctx, model.KindStudent, actor.ID, &student); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if student.BatchID == "" {
			return nil, nil
		}
		var batch model.Batch
		if err := s.store.Get(ctx, model.KindBatch, student.BatchID, &batch); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []model.Batch{batch}, nil
	default:
		return nil, auth.ErrForbidden
	}
}

func (s *BatchService) Update(ctx context.Context, id string, upd BatchUpdate) (model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Batch{}, err
	}
	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, id, &batch); err != nil {
		return model.Batch{}, err
	}
	if err := authorize(actor, auth.ResourceBatch, auth.OwnerRefs{OrganizationID: batch.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Batch{}, err
	}

	if upd.CenterID != nil {
		batch.CenterID = strings.TrimSpace(*upd.CenterID)
	}
	if upd.Course != nil {
		batch.Course = strings.TrimSpace(*upd.Course)
	}
	if upd.Capacity != nil {
		if *upd.Capacity < batch.Enrolled {
			return model.Batch{}, conflictf("capacity %d below current enrollment %d", *upd.Capacity, batch.Enrolled)
		}
		batch.Capacity = *upd.Capacity
	}
	batch.UpdatedAt = nowUTC()

	if err := s.store.Put(ctx, &batch); err != nil {
		return model.Batch{}, err
	}
	return batch, nil
}

// Transition applies start, complete or cancel. Completing a batch cascades
// every enrolled student to completed.
func (s *BatchService) Transition(ctx context.Context, id string, action lifecycle.Action) (model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Batch{}, err
	}
	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, id, &batch); err != nil {
		return model.Batch{}, err
	}
	// Transitions are writes on the record; the lifecycle tables then decide
	// which role may trigger which move.
	if err := authorize(actor, auth.ResourceBatch, auth.OwnerRefs{OrganizationID: batch.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Batch{}, err
	}

	next, err := lifecycle.Apply(lifecycle.MachineBatch, batch.Status, action, actor.Role)
	if err != nil {
		return model.Batch{}, err
	}
	batch.Status = next
	batch.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &batch); err != nil {
		return model.Batch{}, err
	}

	if action == lifecycle.ActionComplete {
		if err := s.completeStudents(ctx, batch.ID); err != nil {
			return model.Batch{}, err
		}
	}
	return batch, nil
}

// Enroll adds a student to a batch. A per-batch sequencer replaces the plain
// read-then-write the counter would otherwise race on; the capacity check
// happens inside the critical section.
func (s *BatchService) Enroll(ctx context.Context, batchID, studentID string) (model.Batch, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Batch{}, err
	}

	mu := s.sequencer(batchID)
	mu.Lock()
	defer mu.Unlock()

	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, batchID, &batch); err != nil {
		return model.Batch{}, err
	}
	if err := authorize(actor, auth.ResourceBatch, auth.OwnerRefs{OrganizationID: batch.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Batch{}, err
	}
	if batch.Status != model.BatchUpcoming && batch.Status != model.BatchOngoing {
		return model.Batch{}, conflictf("batch %s is %s and not accepting enrollment", batch.ID, batch.Status)
	}
	if batch.Enrolled >= batch.Capacity {
		return model.Batch{}, conflictf("batch %s is full (%d/%d)", batch.ID, batch.Enrolled, batch.Capacity)
	}

	var student model.Student
	if err := s.store.Get(ctx, model.KindStudent, studentID, &student); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Batch{}, invalidf("student %s does not exist", studentID)
		}
		return model.Batch{}, err
	}
	if student.BatchID == batch.ID {
		return model.Batch{}, conflictf("student %s already enrolled in batch %s", studentID, batchID)
	}
	if student.BatchID != "" {
		return model.Batch{}, conflictf("student %s already enrolled in another batch", studentID)
	}

	batch.Enrolled++
	batch.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &batch); err != nil {
		return model.Batch{}, err
	}

	student.BatchID = batch.ID
	student.OrganizationID = batch.OrganizationID
	student.Status = model.StudentEnrolled
	student.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &student); err != nil {
		return model.Batch{}, err
	}
	return batch, nil
}

// Delete removes the primary record and all its index copies. Admin only.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	var batch model.Batch
	if err := s.store.Get(ctx, model.KindBatch, id, &batch); err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourceBatch, auth.OwnerRefs{OrganizationID: batch.OrganizationID}, auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindBatch, id)
}

func (s *BatchService) completeStudents(ctx context.Context, batchID string) error {
	recs, err := s.store.ListByIndex(ctx, model.KindStudent, "batch", batchID)
	if err != nil {
		return err
	}
	for _, r := range recs {
		student := r.(*model.Student)
		student.Status = model.StudentCompleted
		student.UpdatedAt = nowUTC()
		if err := s.store.Put(ctx, student); err != nil {
			return err
		}
	}
	return nil
}

// batchRefs resolves owner references for a read. A student actor enrolled in
// this batch gets its own id as a matching reference.
func (s *BatchService) batchRefs(ctx context.Context, actor auth.Actor, batch model.Batch) auth.OwnerRefs {
	refs := auth.OwnerRefs{OrganizationID: batch.OrganizationID}
	if actor.Role == auth.RoleStudent {
		var student model.Student
		if err := s.store.Get(ctx, model.KindStudent, actor.ID, &student); err == nil && student.BatchID == batch.ID {
			refs.StudentID = actor.ID
		}
	}
	return refs
}

func (s *BatchService) sequencer(batchID string) *sync.Mutex {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if s.sequencers == nil {
		s.sequencers = make(map[string]*sync.Mutex)
	}
	mu, ok := s.sequencers[batchID]
	if !ok {
		mu = &sync.Mutex{}
		s.sequencers[batchID] = mu
	}
	return mu
}

func batchSlice(recs []model.Record) []model.Batch {
	out := make([]model.Batch, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.(*model.Batch))
	}
	return out
}
