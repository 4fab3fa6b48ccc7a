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
	"skillbridge.org/internal/verify"
)

// OrganizationService manages training-partner records.
type OrganizationService struct {
	store    *store.Indexed
	verifier verify.Verifier
}

// RegisterOrganizationInput is the public registration payload.
type RegisterOrganizationInput struct {
	Name               string
	Email              string
	Phone              string
	Address            string
	TaxID              string
	RegistrationNumber string
}

// OrganizationUpdate carries field-level edits; nil fields are untouched.
type OrganizationUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

// Register creates a pending organization. It is the one unauthenticated
// mutation: the actor does not exist until the registration is approved. The
// identity verification capability gates it when configured.
func (s *OrganizationService) Register(ctx context.Context, in RegisterOrganizationInput) (model.Organization, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return model.Organization{}, invalidf("organization name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return model.Organization{}, invalidf("valid email is required")
	}
	if in.TaxID == "" && in.RegistrationNumber == "" {
		return model.Organization{}, invalidf("tax_id or registration_number is required")
	}

	if s.verifier != nil {
		profile, err := s.verifier.Verify(ctx, verify.Identifier{
			TaxID:              in.TaxID,
			RegistrationNumber: in.RegistrationNumber,
		})
		if err != nil {
			if errors.Is(err, verify.ErrRejected) {
				return model.Organization{}, invalidf("identity verification rejected the supplied identifier")
			}
			return model.Organization{}, err
		}
		if profile.LegalName != "" {
			in.Name = profile.LegalName
		}
	}

	var existing model.Organization
	if err := s.store.GetByIndex(ctx, model.KindOrganization, "email", in.Email, &existing); err == nil {
		return model.Organization{}, conflictf("organization email %s already registered", in.Email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.Organization{}, err
	}

	now := nowUTC()
	org := model.Organization{
		ID:                 ids.New(),
		Name:               in.Name,
		Email:              in.Email,
		Status:             model.OrgPending,
		Contact:            model.ContactInfo{Phone: in.Phone, Address: in.Address},
		TaxID:              in.TaxID,
		RegistrationNumber: in.RegistrationNumber,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Put(ctx, &org); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}

func (s *OrganizationService) Get(ctx context.Context, id string) (model.Organization, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Organization{}, err
	}
	var org model.Organization
	if err := s.store.Get(ctx, model.KindOrganization, id, &org); err != nil {
		return model.Organization{}, err
	}
	if err := authorize(actor, auth.ResourceOrganization, orgRefs(org), auth.ActionRead); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}

// List returns every organization the actor may read: all of them for
// platform admins and auditors, only its own for a partner org.
func (s *OrganizationService) List(ctx context.Context) ([]model.Organization, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RolePlatformAdmin, auth.RoleAuditor:
		recs, err := s.store.List(ctx, model.KindOrganization)
		if err != nil {
			return nil, err
		}
		out := make([]model.Organization, 0, len(recs))
		for _, r := range recs {
			out = append(out, *r.(*model.Organization))
		}
		return out, nil
	case auth.RolePartnerOrg:
		org, err := s.Get(ctx, actor.OrganizationID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []model.Organization{org}, nil
	default:
		return nil, auth.ErrForbidden
	}
}

func (s *OrganizationService) Update(ctx context.Context, id string, upd OrganizationUpdate) (model.Organization, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Organization{}, err
	}
	var org model.Organization
	if err := s.store.Get(ctx, model.KindOrganization, id, &org); err != nil {
		return model.Organization{}, err
	}
	if err := authorize(actor, auth.ResourceOrganization, orgRefs(org), auth.ActionWrite); err != nil {
		return model.Organization{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Organization{}, invalidf("organization name is required")
		}
		org.Name = name
	}
	if upd.Phone != nil {
		org.Contact.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Address != nil {
		org.Contact.Address = strings.TrimSpace(*upd.Address)
	}
	org.UpdatedAt = nowUTC()

	if err := s.store.Put(ctx, &org); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}

// Transition applies approve, reject or suspend. Approval stamps who approved
// and when.
func (s *OrganizationService) Transition(ctx context.Context, id string, action lifecycle.Action) (model.Organization, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Organization{}, err
	}
	var org model.Organization
	if err := s.store.Get(ctx, model.KindOrganization, id, &org); err != nil {
		return model.Organization{}, err
	}
	if err := authorize(actor, auth.ResourceOrganization, orgRefs(org), auth.Action(action)); err != nil {
		return model.Organization{}, err
	}

	next, err := lifecycle.Apply(lifecycle.MachineOrganization, org.Status, action, actor.Role)
	if err != nil {
		return model.Organization{}, err
	}

	now := nowUTC()
	org.Status = next
	org.UpdatedAt = now
	if action == lifecycle.ActionApprove {
		org.ApprovedBy = actor.ID
		org.ApprovedAt = &now
	}
	if err := s.store.Put(ctx, &org); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}

// Delete removes the primary record and all its index copies. Admin only.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	var org model.Organization
	if err := s.store.Get(ctx, model.KindOrganization, id, &org); err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourceOrganization, orgRefs(org), auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindOrganization, id)
}

// orgRefs: an organization's owner reference is its own id.
func orgRefs(org model.Organization) auth.OwnerRefs {
	return auth.OwnerRefs{OrganizationID: org.ID}
}
