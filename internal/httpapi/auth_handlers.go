package httpapi

import (
	"net/http"
	"time"

	"skillbridge.org/internal/lifecycle"
)

// Local aliases keep the route table readable.
const (
	lifecycleApprove  = lifecycle.ActionApprove
	lifecycleReject   = lifecycle.ActionReject
	lifecycleSuspend  = lifecycle.ActionSuspend
	lifecycleStart    = lifecycle.ActionStart
	lifecycleComplete = lifecycle.ActionComplete
	lifecycleCancel   = lifecycle.ActionCancel
	lifecycleMarkPaid = lifecycle.ActionMarkPaid
	lifecycleAccept   = lifecycle.ActionAccept
	lifecycleVerify   = lifecycle.ActionVerify
)

// transitionRequest is the shared body of every transition endpoint. The
// reason is free text and optional.
type transitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Actor     any       `json:"actor"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	actor, err := a.svc.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	token, expiresAt, err := a.tokens.Issue(actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, Actor: actor})
}
