package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/service"
)

type createBatchRequest struct {
	OrganizationID string    `json:"organization_id"`
	CenterID       string    `json:"center_id,omitempty"`
	Course         string    `json:"course"`
	Capacity       int       `json:"capacity"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

type updateBatchRequest struct {
	CenterID *string `json:"center_id,omitempty"`
	Course   *string `json:"course,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

type enrollRequest struct {
	StudentID string `json:"student_id"`
}

func (a *API) createBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	batch, err := a.svc.Batches.Create(r.Context(), service.CreateBatchInput{
		OrganizationID: req.OrganizationID,
		CenterID:       req.CenterID,
		Course:         req.Course,
		Capacity:       req.Capacity,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "batch.create", "batch", batch.ID, map[string]string{"organization_id": batch.OrganizationID})
	writeData(w, http.StatusCreated, batch)
}

func (a *API) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := a.svc.Batches.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(batches, page, limit)
	writeList(w, items, p)
}

func (a *API) getBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := a.svc.Batches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, batch)
}

func (a *API) updateBatch(w http.ResponseWriter, r *http.Request) {
	var req updateBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	batch, err := a.svc.Batches.Update(r.Context(), chi.URLParam(r, "id"), service.BatchUpdate{
		CenterID: req.CenterID,
		Course:   req.Course,
		Capacity: req.Capacity,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "batch.update", "batch", batch.ID, nil)
	writeData(w, http.StatusOK, batch)
}

func (a *API) deleteBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Batches.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "batch.delete", "batch", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) enrollStudent(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	batch, err := a.svc.Batches.Enroll(r.Context(), chi.URLParam(r, "id"), req.StudentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "batch.enroll", "batch", batch.ID, map[string]string{"student_id": req.StudentID})
	writeData(w, http.StatusOK, batch)
}

func (a *API) batchTransition(action lifecycle.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		batch, err := a.svc.Batches.Transition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), "batch."+string(action), "batch", batch.ID, auditReason(req.Reason))
		writeData(w, http.StatusOK, batch)
	}
}
