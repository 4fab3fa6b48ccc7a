package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "skillbridge"

// Claims is the JWT payload carried by every issued token.
type Claims struct {
	Email          string `json:"email,omitempty"`
	Role           string `json:"role"`
	Subtype        string `json:"subtype,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 identity tokens. The secret is
// injected so tests and commands can run with isolated keys.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithIssuer overrides the default token issuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithTTL overrides the default 24h token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Only intended for test use.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService builds a token service around a signing secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is not configured")
	}
	s := &TokenService{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token embedding the actor's identity and claims. The only
// failure mode is signing itself; callers treat that as fatal.
func (s *TokenService) Issue(actor Actor) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Email:          actor.Email,
		Role:           string(actor.Role),
		Subtype:        string(actor.Subtype),
		OrganizationID: actor.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates the signature and expiry and returns the embedded actor.
// Failures come back as *AuthError distinguishing expiry, malformed input,
// and signature mismatch. Tokens are never refreshed here.
func (s *TokenService) Verify(token string) (Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Actor{}, &AuthError{Kind: ErrorMalformed}
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Actor{}, classifyTokenError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Actor{}, &AuthError{Kind: ErrorMalformed}
	}
	if claims.Issuer != s.issuer || strings.TrimSpace(claims.Subject) == "" {
		return Actor{}, &AuthError{Kind: ErrorMalformed}
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Actor{}, &AuthError{Kind: ErrorMalformed}
	}

	return Actor{
		ID:             claims.Subject,
		Email:          claims.Email,
		Role:           role,
		Subtype:        Subtype(claims.Subtype),
		OrganizationID: claims.OrganizationID,
	}, nil
}

// ExtractBearer pulls the token out of an Authorization header value. A
// missing or malformed header is "no token", not an error; the access
// decision rejects anonymous actors downstream.
func ExtractBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	const scheme = "bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func classifyTokenError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &AuthError{Kind: ErrorExpired}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &AuthError{Kind: ErrorInvalidSignature}
	default:
		return &AuthError{Kind: ErrorMalformed}
	}
}
