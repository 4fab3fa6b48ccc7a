package service

import (
	"context"
	"errors"
	"strings"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/ids"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/store"
)

// StudentService manages trainee records. A student actor's id equals its
// student record id, so self-scoped access is plain equality.
type StudentService struct {
	store *store.Indexed
}

// CreateStudentInput is the student enrollment payload.
type CreateStudentInput struct {
	Email          string
	Name           string
	OrganizationID string
}

// StudentUpdate carries field-level edits; nil fields are untouched. Status
// accepts only the declared student states: students have no role-gated
// transition table, status is an owner/admin field edit.
type StudentUpdate struct {
	Name   *string
	Status *string
}

func (s *StudentService) Create(ctx context.Context, in CreateStudentInput) (model.Student, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Student{}, err
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return model.Student{}, invalidf("valid email is required")
	}
	if in.Name == "" {
		return model.Student{}, invalidf("name is required")
	}
	if err := authorize(actor, auth.ResourceStudent, auth.OwnerRefs{OrganizationID: in.OrganizationID}, auth.ActionWrite); err != nil {
		return model.Student{}, err
	}

	var existing model.Student
	if err := s.store.GetByIndex(ctx, model.KindStudent, "email", in.Email, &existing); err == nil {
		return model.Student{}, conflictf("student email %s already registered", in.Email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.Student{}, err
	}

	now := nowUTC()
	student := model.Student{
		ID:             ids.New(),
		Email:          in.Email,
		Name:           in.Name,
		OrganizationID: in.OrganizationID,
		Status:         model.StudentActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, &student); err != nil {
		return model.Student{}, err
	}
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (model.Student, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Student{}, err
	}
	var student model.Student
	if err := s.store.Get(ctx, model.KindStudent, id, &student); err != nil {
		return model.Student{}, err
	}
	if err := authorize(actor, auth.ResourceStudent, studentRefs(student), auth.ActionRead); err != nil {
		return model.Student{}, err
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RolePlatformAdmin, auth.RoleAuditor:
		recs, err := s.store.List(ctx, model.KindStudent)
		if err != nil {
			return nil, err
		}
		return studentSlice(recs), nil
	case auth.RolePartnerOrg:
		recs, err := s.store.ListByIndex(ctx, model.KindStudent, "organization", actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		return studentSlice(recs), nil
	case auth.RoleStudent:
		student, err := s.Get(ctx, actor.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []model.Student{student}, nil
	default:
		return nil, auth.ErrForbidden
	}
}

func (s *StudentService) Update(ctx context.Context, id string, upd StudentUpdate) (model.Student, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Student{}, err
	}
	var student model.Student
	if err := s.store.Get(ctx, model.KindStudent, id, &student); err != nil {
		return model.Student{}, err
	}
	if err := authorize(actor, auth.ResourceStudent, studentRefs(student), auth.ActionWrite); err != nil {
		return model.Student{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Student{}, invalidf("name is required")
		}
		student.Name = name
	}
	if upd.Status != nil {
		status := strings.TrimSpace(strings.ToLower(*upd.Status))
		switch status {
		case model.StudentEnrolled, model.StudentActive, model.StudentCompleted, model.StudentDropped:
			student.Status = status
		default:
			return model.Student{}, invalidf("unsupported status %s", status)
		}
	}
	student.UpdatedAt = nowUTC()

	if err := s.store.Put(ctx, &student); err != nil {
		return model.Student{}, err
	}
	return student, nil
}

// Delete removes the primary record and all its index copies. Admin only.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	var student model.Student
	if err := s.store.Get(ctx, model.KindStudent, id, &student); err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourceStudent, studentRefs(student), auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindStudent, id)
}

func studentRefs(student model.Student) auth.OwnerRefs {
	return auth.OwnerRefs{OrganizationID: student.OrganizationID, StudentID: student.ID}
}

func studentSlice(recs []model.Record) []model.Student {
	out := make([]model.Student, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.(*model.Student))
	}
	return out
}
