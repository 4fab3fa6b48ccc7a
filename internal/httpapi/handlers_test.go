package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/service"
	"skillbridge.org/internal/store"
	"skillbridge.org/internal/store/memory"
)

const (
	testAdminEmail    = "admin@test.local"
	testAdminPassword = "admin-password-1"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	svc := service.New(store.NewIndexed(memory.New()), nil)
	if _, _, err := svc.Accounts.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	api := New(svc, tokens, Options{Version: "test"})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, token string) *http.Response {
	return c.do(http.MethodPost, path, body, token)
}

func (c *apiClient) get(path string, params url.Values, token string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (c *apiClient) login(email, password string) string {
	c.t.Helper()
	resp := c.post("/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "")
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](c.t, resp)
	data := payload["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		c.t.Fatalf("empty token issued")
	}
	return token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// data unwraps the success envelope around a single resource.
func data(t *testing.T, r *http.Response) map[string]any {
	t.Helper()
	payload := decode[map[string]any](t, r)
	if payload["success"] != true {
		t.Fatalf("expected success envelope, got %v", payload)
	}
	return payload["data"].(map[string]any)
}

func TestAPITrainingFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(testAdminEmail, testAdminPassword)

	// Register a partner organization; it starts pending.
	resp := api.post("/v1/organizations", map[string]any{
		"name":   "Delta Skills Center",
		"email":  "delta@example.com",
		"tax_id": "TAX-delta",
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	org := data(t, resp)
	orgID := org["id"].(string)
	if org["status"] != "pending" {
		t.Fatalf("new organization status: %v", org["status"])
	}

	// Approve it.
	resp = api.post("/v1/organizations/"+orgID+"/approve", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["status"]; got != "active" {
		t.Fatalf("approved organization status: %v", got)
	}

	// Create a batch under the active organization.
	resp = api.post("/v1/batches", map[string]any{
		"organization_id": orgID,
		"course":          "welding",
		"capacity":        2,
		"start_date":      time.Now().UTC().Format(time.RFC3339),
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create batch status: %d", resp.StatusCode)
	}
	batch := data(t, resp)
	batchID := batch["id"].(string)

	// Create and enroll a student.
	resp = api.post("/v1/students", map[string]any{
		"email":           "trainee@example.com",
		"name":            "Trainee One",
		"organization_id": orgID,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create student status: %d", resp.StatusCode)
	}
	studentID := data(t, resp)["id"].(string)

	resp = api.post("/v1/batches/"+batchID+"/enroll", map[string]any{
		"student_id": studentID,
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("enroll status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["enrolled"]; got != float64(1) {
		t.Fatalf("enrolled count: %v", got)
	}

	// Run the batch to completion; the student's record follows.
	resp = api.post("/v1/batches/"+batchID+"/start", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status: %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/batches/"+batchID+"/complete", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["status"]; got != "completed" {
		t.Fatalf("batch status: %v", got)
	}

	resp = api.get("/v1/students/"+studentID, nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get student status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["status"]; got != "completed" {
		t.Fatalf("student status after batch completion: %v", got)
	}
}

func TestAPIListPagination(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(testAdminEmail, testAdminPassword)

	for _, name := range []string{"One", "Two", "Three"} {
		resp := api.post("/v1/organizations", map[string]any{
			"name":   name + " Center",
			"email":  name + "@example.com",
			"tax_id": "TAX-" + name,
		}, token)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register %s status: %d", name, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := api.get("/v1/organizations", url.Values{"page": {"2"}, "limit": {"2"}}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	items := payload["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("page 2 with limit 2 should hold 1 item, got %d", len(items))
	}
	p := payload["pagination"].(map[string]any)
	if p["total"] != float64(3) || p["totalPages"] != float64(2) || p["page"] != float64(2) {
		t.Fatalf("pagination block: %v", p)
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	api := newTestAPI(t)

	// Registration is the one public mutation: anyone may apply.
	resp := api.post("/v1/organizations", map[string]any{
		"name":   "Walk-In Center",
		"email":  "walkin@example.com",
		"tax_id": "TAX-walkin",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("anonymous register status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["status"]; got != "pending" {
		t.Fatalf("anonymous registration status: %v", got)
	}

	// Everything else needs an actor: the service layer rejects anonymous reads.
	resp = api.get("/v1/organizations", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous list status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["error"] != "unauthorized" {
		t.Fatalf("anonymous list error code: %v", body["error"])
	}

	// Garbage token: rejected in middleware with the failure kind.
	resp = api.get("/v1/organizations", nil, "not-a-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status: %d", resp.StatusCode)
	}
	body = decode[map[string]any](t, resp)
	if body["error"] != "malformed" {
		t.Fatalf("bad token error code: %v", body["error"])
	}
}

func TestAPILoginFailure(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/v1/auth/login", map[string]any{
		"email":    testAdminEmail,
		"password": "wrong-password",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials status: %d", resp.StatusCode)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(testAdminEmail, testAdminPassword)

	// Unknown id is a 404.
	resp := api.get("/v1/organizations/missing", nil, token)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing org status: %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["error"] != "not_found" {
		t.Fatalf("missing org error code: %v", body["error"])
	}

	// Unknown JSON field is a 400.
	resp = api.post("/v1/organizations", map[string]any{
		"name":     "Typo Center",
		"email":    "typo@example.com",
		"websiite": "https://example.com",
	}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Repeating a transition is a 409.
	resp = api.post("/v1/organizations", map[string]any{
		"name":   "Twice Center",
		"email":  "twice@example.com",
		"tax_id": "TAX-twice",
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	orgID := data(t, resp)["id"].(string)

	resp = api.post("/v1/organizations/"+orgID+"/approve", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first approve status: %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = api.post("/v1/organizations/"+orgID+"/approve", nil, token)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second approve status: %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["error"] != "illegal_transition" {
		t.Fatalf("second approve error code: %v", body["error"])
	}
}

func TestAPITransitionAcceptsReason(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(testAdminEmail, testAdminPassword)

	resp := api.post("/v1/organizations", map[string]any{
		"name":   "Reject Center",
		"email":  "reject@example.com",
		"tax_id": "TAX-reject",
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	orgID := data(t, resp)["id"].(string)

	resp = api.post("/v1/organizations/"+orgID+"/reject", map[string]any{
		"reason": "incomplete paperwork",
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject status: %d", resp.StatusCode)
	}
	if got := data(t, resp)["status"]; got != "rejected" {
		t.Fatalf("rejected organization status: %v", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/healthz", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["service"] != "skillbridge-api" || body["version"] != "test" {
		t.Fatalf("healthz body: %v", body)
	}

	resp = api.get("/readyz", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status: %d", resp.StatusCode)
	}
}
