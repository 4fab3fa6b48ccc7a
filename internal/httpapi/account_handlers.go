package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/service"
)

type createAccountRequest struct {
	ID             string `json:"id,omitempty"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Subtype        string `json:"subtype,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
}

func (a *API) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	account, err := a.svc.Accounts.Create(r.Context(), service.CreateAccountInput{
		ID:             req.ID,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		Subtype:        req.Subtype,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "account.create", "account", account.ID, map[string]string{
		"email": account.Email,
		"role":  account.Role,
	})
	writeData(w, http.StatusCreated, account)
}

func (a *API) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.svc.Accounts.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(accounts, page, limit)
	writeList(w, items, p)
}

func (a *API) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := a.svc.Accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, account)
}

func (a *API) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Accounts.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "account.delete", "account", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) setAccountActive(active bool) http.HandlerFunc {
	event := "account.deactivate"
	if active {
		event = "account.activate"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := a.svc.Accounts.SetActive(r.Context(), chi.URLParam(r, "id"), active)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), event, "account", account.ID, nil)
		writeData(w, http.StatusOK, account)
	}
}
