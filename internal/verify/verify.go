// Package verify defines the identity-verification capability consumed at
// organization registration. Only the contract lives here; the verification
// service itself is external.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRejected means the identifier was checked and refused, as opposed to the
// capability being unreachable.
var ErrRejected = errors.New("verify: identifier rejected")

// Identifier is the structured id presented by a registering organization.
type Identifier struct {
	TaxID              string `json:"tax_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// Profile is the validated canonical record the capability returns.
type Profile struct {
	LegalName          string `json:"legal_name"`
	TaxID              string `json:"tax_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// Verifier validates a structured identifier, returning the canonical profile
// or ErrRejected.
type Verifier interface {
	Verify(ctx context.Context, id Identifier) (Profile, error)
}

// HTTPVerifier consumes the capability over HTTP.
type HTTPVerifier struct {
	url    string
	client *http.Client
}

var _ Verifier = (*HTTPVerifier)(nil)

// NewHTTPVerifier points at an external verification endpoint.
func NewHTTPVerifier(url string) *HTTPVerifier {
	return &HTTPVerifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, id Identifier) (Profile, error) {
	body, err := json.Marshal(id)
	if err != nil {
		return Profile{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("verification service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var profile Profile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return Profile{}, fmt.Errorf("decode verification response: %w", err)
		}
		return profile, nil
	case http.StatusUnprocessableEntity, http.StatusNotFound:
		return Profile{}, ErrRejected
	default:
		return Profile{}, fmt.Errorf("verification service returned %d", resp.StatusCode)
	}
}

// Static is a canned verifier for tests and development without the external
// service: known identifiers validate, everything else is rejected.
type Static struct {
	Profiles map[string]Profile
}

var _ Verifier = (*Static)(nil)

func (s *Static) Verify(ctx context.Context, id Identifier) (Profile, error) {
	key := id.TaxID
	if key == "" {
		key = id.RegistrationNumber
	}
	if p, ok := s.Profiles[key]; ok {
		return p, nil
	}
	return Profile{}, ErrRejected
}
