package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/service"
)

type offerPlacementRequest struct {
	StudentID  string `json:"student_id"`
	BatchID    string `json:"batch_id"`
	EmployerID string `json:"employer_id,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
}

func (a *API) offerPlacement(w http.ResponseWriter, r *http.Request) {
	var req offerPlacementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	placement, err := a.svc.Placements.Offer(r.Context(), service.OfferPlacementInput{
		StudentID:  req.StudentID,
		BatchID:    req.BatchID,
		EmployerID: req.EmployerID,
		JobTitle:   req.JobTitle,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "placement.offer", "placement", placement.ID, map[string]string{
		"student_id":  placement.StudentID,
		"employer_id": placement.EmployerID,
	})
	writeData(w, http.StatusCreated, placement)
}

func (a *API) listPlacements(w http.ResponseWriter, r *http.Request) {
	placements, err := a.svc.Placements.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(placements, page, limit)
	writeList(w, items, p)
}

func (a *API) getPlacement(w http.ResponseWriter, r *http.Request) {
	placement, err := a.svc.Placements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, placement)
}

func (a *API) deletePlacement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Placements.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "placement.delete", "placement", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// placementTransition serves the offer axis (accept, reject, complete).
func (a *API) placementTransition(action lifecycle.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		placement, err := a.svc.Placements.Transition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), "placement."+string(action), "placement", placement.ID, auditReason(req.Reason))
		writeData(w, http.StatusOK, placement)
	}
}

// placementVerification serves the verification axis (verify, reject).
func (a *API) placementVerification(action lifecycle.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		placement, err := a.svc.Placements.VerificationTransition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), "placement.verification."+string(action), "placement", placement.ID, auditReason(req.Reason))
		writeData(w, http.StatusOK, placement)
	}
}
