package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeReq(t *testing.T, body string, dst any) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	return decodeJSON(httptest.NewRecorder(), req, dst)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	if err := decodeReq(t, `{"name":"ok"}`, &dst); err != nil || dst.Name != "ok" {
		t.Fatalf("valid body: %v", err)
	}
	if err := decodeReq(t, ``, &dst); !errors.Is(err, errBodyRequired) {
		t.Fatalf("empty body: %v", err)
	}
	if err := decodeReq(t, `{"name":"x","bogus":1}`, &dst); err == nil {
		t.Fatal("unknown field must be rejected")
	}
	if err := decodeReq(t, `{"name":"x"}{"name":"y"}`, &dst); err == nil {
		t.Fatal("trailing data must be rejected")
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	var req transitionRequest

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(""))
	if err := decodeOptionalJSON(httptest.NewRecorder(), r, &req); err != nil {
		t.Fatalf("empty body: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"reason":"why"}`))
	if err := decodeOptionalJSON(httptest.NewRecorder(), r, &req); err != nil || req.Reason != "why" {
		t.Fatalf("reason body: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{not json`))
	if err := decodeOptionalJSON(httptest.NewRecorder(), r, &req); err == nil {
		t.Fatal("malformed body must still be rejected")
	}
}

func TestPageParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?page=3&limit=50", nil)
	page, limit := pageParams(r)
	if page != 3 || limit != 50 {
		t.Fatalf("page=%d limit=%d", page, limit)
	}

	// Junk and out-of-range values fall back to defaults and the cap.
	r = httptest.NewRequest(http.MethodGet, "/x?page=-1&limit=junk", nil)
	page, limit = pageParams(r)
	if page != 1 || limit != 20 {
		t.Fatalf("page=%d limit=%d", page, limit)
	}

	r = httptest.NewRequest(http.MethodGet, "/x?limit=5000", nil)
	if _, limit = pageParams(r); limit != 100 {
		t.Fatalf("limit cap: %d", limit)
	}
}
