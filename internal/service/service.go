// Package service composes the access decision, the lifecycle engine and the
// indexed record store into the operations the HTTP layer exposes. Every
// mutating operation runs the same way: resolve the actor, ask CanAccess,
// validate the lifecycle transition, then persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/store"
	"skillbridge.org/internal/verify"
)

var (
	// ErrValidation marks missing or malformed input. Handlers map it to 400.
	ErrValidation = errors.New("service: invalid input")
	// ErrConflict marks unique-index collisions and capacity breaches. 409.
	ErrConflict = errors.New("service: conflict")
)

// Services bundles the per-entity services over one injected store handle.
type Services struct {
	Organizations *OrganizationService
	Batches       *BatchService
	Payments      *PaymentService
	Placements    *PlacementService
	Students      *StudentService
	Accounts      *AccountService
}

// New wires every service against the given store and verifier. A nil
// verifier disables registration-time identity verification.
func New(st *store.Indexed, verifier verify.Verifier) *Services {
	return &Services{
		Organizations: &OrganizationService{store: st, verifier: verifier},
		Batches:       &BatchService{store: st},
		Payments:      &PaymentService{store: st},
		Placements:    &PlacementService{store: st},
		Students:      &StudentService{store: st},
		Accounts:      &AccountService{store: st},
	}
}

// requireActor rejects anonymous requests before any access decision.
func requireActor(ctx context.Context) (auth.Actor, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return auth.Actor{}, auth.ErrUnauthorized
	}
	return actor, nil
}

// authorize is the single choke point through which every operation consults
// the access decision.
func authorize(actor auth.Actor, resource auth.Resource, refs auth.OwnerRefs, action auth.Action) error {
	if !auth.CanAccess(actor, resource, refs, action) {
		return fmt.Errorf("%w: %s %s", auth.ErrForbidden, action, resource)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func nowUTC() time.Time { return time.Now().UTC() }
