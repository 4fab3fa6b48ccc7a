package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", opts...)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	actor := Actor{
		ID:             "acct-1",
		Email:          "ops@example.com",
		Role:           RolePartnerOrg,
		Subtype:        SubtypeOrgAdmin,
		OrganizationID: "org-7",
	}

	token, expiresAt, err := svc.Issue(actor)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != actor {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, actor)
	}
}

func TestTokenExpiry(t *testing.T) {
	current := time.Now()
	svc := newTestTokenService(t,
		WithTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)

	token, _, err := svc.Issue(Actor{ID: "acct-1", Role: RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	current = current.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	if err == nil {
		t.Fatal("expected expired token to fail")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Kind != ErrorExpired {
		t.Fatalf("expected expired kind, got %v", err)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("token errors must unwrap to ErrUnauthorized")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := newTestTokenService(t)
	verifier, err := NewTokenService("a-different-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _, err := issuer.Issue(Actor{ID: "acct-1", Role: RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = verifier.Verify(token)
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Kind != ErrorInvalidSignature {
		t.Fatalf("expected invalid_signature kind, got %v", err)
	}
}

func TestTokenTampered(t *testing.T) {
	svc := newTestTokenService(t)
	token, _, err := svc.Issue(Actor{ID: "acct-1", Role: RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	parts[1] = "eyJyb2xlIjoicGxhdGZvcm1fYWRtaW4ifQ"
	if _, err := svc.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatal("tampered payload must not verify")
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer ", "", false},
		{"Basic dXNlcg==", "", false},
		{"abc.def.ghi", "", false},
		{"Bearer two tokens", "", false},
	}
	for _, c := range cases {
		token, ok := ExtractBearer(c.header)
		if ok != c.ok || token != c.token {
			t.Fatalf("ExtractBearer(%q) = (%q, %v), want (%q, %v)", c.header, token, ok, c.token, c.ok)
		}
	}
}
