package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/service"
)

type createStudentRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id,omitempty"`
}

type updateStudentRequest struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (a *API) createStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	student, err := a.svc.Students.Create(r.Context(), service.CreateStudentInput{
		Email:          req.Email,
		Name:           req.Name,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "student.create", "student", student.ID, map[string]string{"email": student.Email})
	writeData(w, http.StatusCreated, student)
}

func (a *API) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := a.svc.Students.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	page, limit := pageParams(r)
	items, p := paginate(students, page, limit)
	writeList(w, items, p)
}

func (a *API) getStudent(w http.ResponseWriter, r *http.Request) {
	student, err := a.svc.Students.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, student)
}

func (a *API) updateStudent(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	student, err := a.svc.Students.Update(r.Context(), chi.URLParam(r, "id"), service.StudentUpdate{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "student.update", "student", student.ID, nil)
	writeData(w, http.StatusOK, student)
}

func (a *API) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Students.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	a.audit(r.Context(), "student.delete", "student", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
