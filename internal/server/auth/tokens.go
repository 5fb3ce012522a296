// Package auth issues and verifies the bearer tokens that gate every
// protected request. Tokens are HS256 JWTs; the service is stateless apart
// from the secrets injected at construction.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes short-lived access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	DefaultAccessTTL  = 7 * 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Claims is the JWT payload: registered claims (sub, iat, exp, jti) plus role and kind.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Kind Kind   `json:"kind"`
}

// ExpiresAtTime returns exp, or the zero time when the claim is missing.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Token is a freshly signed credential together with the claims it carries.
type Token struct {
	Value     string
	ID        string
	Subject   string
	Role      string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Option customises a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now, mainly for tests that need to move past exp.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService builds a service from process-wide secrets. An empty
// refreshSecret falls back to accessSecret; non-positive TTLs fall back to
// the 7d/30d defaults.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenService {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	s := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) secretFor(kind Kind) ([]byte, error) {
	var secret []byte
	switch kind {
	case KindAccess:
		secret = s.accessSecret
	case KindRefresh:
		secret = s.refreshSecret
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", common.ErrTokenMalformed, kind)
	}
	if len(secret) == 0 {
		return nil, common.ErrSigning
	}
	return secret, nil
}

func (s *TokenService) ttlFor(kind Kind) time.Duration {
	if kind == KindRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Issue signs a new token for subject. The only failure is a missing secret.
func (s *TokenService) Issue(subject, role string, kind Kind) (*Token, error) {
	secret, err := s.secretFor(kind)
	if err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttlFor(kind))),
		},
		Role: role,
		Kind: kind,
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSigning, err)
	}

	return &Token{
		Value:     value,
		ID:        claims.ID,
		Subject:   subject,
		Role:      role,
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssuePair mints an access and a refresh token for the same subject.
func (s *TokenService) IssuePair(subject, role string) (*TokenPair, error) {
	access, err := s.Issue(subject, role, KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issue(subject, role, KindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access.Value, RefreshToken: refresh.Value}, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// Errors are common.ErrTokenMalformed, common.ErrTokenInvalidSignature or
// common.ErrTokenExpired; the library error is never exposed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	// Expiry is checked below against s.now, not by the library.
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*Claims)
		if !ok {
			return nil, common.ErrTokenMalformed
		}
		return s.secretFor(c.Kind)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrTokenMalformed)
	}
	exp := claims.ExpiresAtTime()
	if exp.IsZero() || !s.now().Before(exp) {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, common.ErrSigning):
		return common.ErrSigning
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrTokenInvalidSignature
	default:
		return common.ErrTokenMalformed
	}
}

// DecodeUnsafe parses the payload without checking signature or expiry.
// For diagnostics only; it must never gate access. Returns nil on failure.
func (s *TokenService) DecodeUnsafe(tokenString string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// Refresh verifies a refresh token and mints a brand-new access token for the
// same subject and role. The refresh token itself is left untouched.
func (s *TokenService) Refresh(refreshToken string) (*Token, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%w: want %s, got %s", common.ErrTokenKindMismatch, KindRefresh, claims.Kind)
	}
	return s.Issue(claims.Subject, claims.Role, KindAccess)
}

// IsExpired reports whether the token's exp has passed. Anything that cannot
// be decoded, or lacks exp, counts as expired.
func (s *TokenService) IsExpired(tokenString string) bool {
	claims := s.DecodeUnsafe(tokenString)
	if claims == nil {
		return true
	}
	exp := claims.ExpiresAtTime()
	return exp.IsZero() || !s.now().Before(exp)
}
