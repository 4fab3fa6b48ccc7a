package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/service"
)

type registerOrganizationRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	Address            string `json:"address,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

type updateOrganizationRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (a *API) registerOrganization(w http.ResponseWriter, r *http.Request) {
	var req registerOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	org, err := a.svc.Organizations.Register(r.Context(), service.RegisterOrganizationInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		TaxID:              req.TaxID,
		RegistrationNumber: req.RegistrationNumber,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "organization.register", "organization", org.ID, map[string]string{"name": org.Name})
	writeData(w, http.StatusCreated, org)
}

func (a *API) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := a.svc.Organizations.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(orgs, page, limit)
	writeList(w, items, p)
}

func (a *API) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := a.svc.Organizations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, org)
}

func (a *API) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req updateOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	org, err := a.svc.Organizations.Update(r.Context(), chi.URLParam(r, "id"), service.OrganizationUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "organization.update", "organization", org.ID, nil)
	writeData(w, http.StatusOK, org)
}

func (a *API) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Organizations.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "organization.delete", "organization", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) organizationTransition(action lifecycle.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		org, err := a.svc.Organizations.Transition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), "organization."+string(action), "organization", org.ID, auditReason(req.Reason))
		writeData(w, http.StatusOK, org)
	}
}

func auditReason(reason string) map[string]string {
	if reason == "" {
		return nil
	}
	return map[string]string{"reason": reason}
}
