package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/lifecycle"
	"skillbridge.org/internal/service"
	"skillbridge.org/internal/store"
)

// pagination is echoed on every list response.
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps a single resource in the success envelope.
func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{
		"success": true,
		"data":    v,
	})
}

// writeList wraps an already-paginated page in the success envelope.
func writeList(w http.ResponseWriter, items any, p pagination) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       items,
		"pagination": p,
	})
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	payload := map[string]any{"error": errCode}
	if msg != "" {
		payload["message"] = msg
	}
	writeJSON(w, code, payload)
}

// handleServiceError maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with no detail leaked.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "illegal_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// errBodyRequired marks an empty request body so decodeOptionalJSON can
// tolerate it.
var errBodyRequired = errors.New("request body is required")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// decodeOptionalJSON tolerates an empty body. Transition endpoints accept
// only an optional free-text reason.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := decodeJSON(w, r, dst)
	if errors.Is(err, errBodyRequired) {
		return nil
	}
	return err
}

// pageParams reads ?page= and ?limit= with sane bounds.
func pageParams(r *http.Request) (page, limit int) {
	page = positiveQueryInt(r, "page", 1)
	limit = positiveQueryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func positiveQueryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// paginate slices one page out of the full result set and builds the
// pagination block. All listing is in-memory; the store has no offset reads.
func paginate[T any](items []T, page, limit int) ([]T, pagination) {
	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := items[start:end]
	if out == nil {
		out = []T{}
	}
	return out, pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
