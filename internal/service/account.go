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

// AccountService manages login credentials. Authenticate is the only entry
// point reachable without an actor in context; everything else is admin
// surface.
type AccountService struct {
	store *store.Indexed
}

// CreateAccountInput is the admin account-provisioning payload. ID is
// optional: student accounts are provisioned with the student record id so
// the token subject matches the record for self-scoped access.
type CreateAccountInput struct {
	ID             string
	Email          string
	Password       string
	Role           string
	Subtype        string
	OrganizationID string
}

func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (model.Account, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Account{}, err
	}
	if err := authorize(actor, auth.ResourceAccount, auth.OwnerRefs{}, auth.ActionWrite); err != nil {
		return model.Account{}, err
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return model.Account{}, invalidf("valid email is required")
	}
	if len(in.Password) < 8 {
		return model.Account{}, invalidf("password must be at least 8 characters")
	}
	role, ok := auth.ParseRole(in.Role)
	if !ok {
		return model.Account{}, invalidf("unsupported role %s", in.Role)
	}
	if !auth.ValidSubtype(role, auth.Subtype(in.Subtype)) {
		return model.Account{}, invalidf("subtype %s is not valid for role %s", in.Subtype, role)
	}

	var existing model.Account
	if err := s.store.GetByIndex(ctx, model.KindAccount, "email", in.Email, &existing); err == nil {
		return model.Account{}, conflictf("account email %s already registered", in.Email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.Account{}, err
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.Account{}, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = ids.New()
	}

	now := nowUTC()
	account := model.Account{
		ID:             id,
		Email:          in.Email,
		PasswordDigest: digest,
		Role:           string(role),
		Subtype:        in.Subtype,
		OrganizationID: strings.TrimSpace(in.OrganizationID),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, &account); err != nil {
		return model.Account{}, err
	}
	return account.Sanitized(), nil
}

// Authenticate checks credentials and returns the actor identity a token
// should carry. Unknown email, wrong password and deactivated account all
// collapse to ErrUnauthorized so the login endpoint leaks nothing.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (auth.Actor, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account model.Account
	if err := s.store.GetByIndex(ctx, model.KindAccount, "email", email, &account); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Actor{}, auth.ErrUnauthorized
		}
		return auth.Actor{}, err
	}
	if !account.Active {
		return auth.Actor{}, auth.ErrUnauthorized
	}
	if err := auth.VerifyPassword(account.PasswordDigest, password); err != nil {
		return auth.Actor{}, auth.ErrUnauthorized
	}
	return auth.Actor{
		ID:             account.ID,
		Email:          account.Email,
		Role:           auth.Role(account.Role),
		Subtype:        auth.Subtype(account.Subtype),
		OrganizationID: account.OrganizationID,
	}, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (model.Account, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Account{}, err
	}
	if err := authorize(actor, auth.ResourceAccount, auth.OwnerRefs{}, auth.ActionRead); err != nil {
		return model.Account{}, err
	}
	var account model.Account
	if err := s.store.Get(ctx, model.KindAccount, id, &account); err != nil {
		return model.Account{}, err
	}
	return account.Sanitized(), nil
}

func (s *AccountService) List(ctx context.Context) ([]model.Account, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, auth.ResourceAccount, auth.OwnerRefs{}, auth.ActionRead); err != nil {
		return nil, err
	}
	recs, err := s.store.List(ctx, model.KindAccount)
	if err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.(*model.Account).Sanitized())
	}
	return out, nil
}

// SetActive flips the account's active flag. Reserved for super_admin.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool) (model.Account, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return model.Account{}, err
	}
	action := auth.ActionDeactivate
	if active {
		action = auth.ActionActivate
	}
	if err := authorize(actor, auth.ResourceAccount, auth.OwnerRefs{}, action); err != nil {
		return model.Account{}, err
	}

	var account model.Account
	if err := s.store.Get(ctx, model.KindAccount, id, &account); err != nil {
		return model.Account{}, err
	}
	account.Active = active
	account.UpdatedAt = nowUTC()
	if err := s.store.Put(ctx, &account); err != nil {
		return model.Account{}, err
	}
	return account.Sanitized(), nil
}

// Delete removes the credential record entirely. Reserved for super_admin.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if err := authorize(actor, auth.ResourceAccount, auth.OwnerRefs{}, auth.ActionDelete); err != nil {
		return err
	}
	return s.store.Delete(ctx, model.KindAccount, id)
}

// EnsureAdmin provisions a super_admin account if the email is not yet
// registered. Used by the bootstrap command; bypasses actor checks.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (model.Account, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var existing model.Account
	err := s.store.GetByIndex(ctx, model.KindAccount, "email", email, &existing)
	if err == nil {
		return existing.Sanitized(), false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Account{}, false, err
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return model.Account{}, false, err
	}
	now := nowUTC()
	account := model.Account{
		ID:             ids.New(),
		Email:          email,
		PasswordDigest: digest,
		Role:           string(auth.RolePlatformAdmin),
		Subtype:        string(auth.SubtypeSuperAdmin),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, &account); err != nil {
		return model.Account{}, false, err
	}
	return account.Sanitized(), true, nil
}
