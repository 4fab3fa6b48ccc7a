package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/service"
)

type createPaymentRequest struct {
	OrganizationID string    `json:"organization_id"`
	BatchID        string    `json:"batch_id"`
	MilestoneType  string    `json:"milestone_type"`
	Amount         int64     `json:"amount"`
	DueDate        time.Time `json:"due_date,omitempty"`
}

func (a *API) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	payment, err := a.svc.Payments.Create(r.Context(), service.CreatePaymentInput{
		OrganizationID: req.OrganizationID,
		BatchID:        req.BatchID,
		MilestoneType:  req.MilestoneType,
		Amount:         req.Amount,
		DueDate:        req.DueDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "payment.create", "payment", payment.ID, map[string]string{
		"organization_id": payment.OrganizationID,
		"batch_id":        payment.BatchID,
	})
	writeData(w, http.StatusCreated, payment)
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := a.svc.Payments.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(payments, page, limit)
	writeList(w, items, p)
}

func (a *API) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := a.svc.Payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, payment)
}

func (a *API) deletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Payments.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "payment.delete", "payment", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) paymentTransition(action lifecycle.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		payment, err := a.svc.Payments.Transition(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		a.audit(r.Context(), "payment."+string(action), "payment", payment.ID, auditReason(req.Reason))
		writeData(w, http.StatusOK, payment)
	}
}
