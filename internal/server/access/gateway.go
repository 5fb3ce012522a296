// Package access turns a bearer credential into an authorization decision:
// token verification first, then role and ownership checks.
package access

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/auth"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

// Verifier is the part of auth.TokenService the gateway needs.
type Verifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// Requirement describes what a route demands. Empty fields are not checked.
type Requirement struct {
	Role    string
	OwnerID string
}

// Subject is the authenticated caller.
type Subject struct {
	ID   string
	Role string
}

type Gateway struct {
	tokens Verifier
}

func NewGateway(tokens Verifier) *Gateway {
	return &Gateway{tokens: tokens}
}

// Authorize verifies token and applies req. Failures wrap either
// common.ErrUnauthenticated (together with the token error kind) or
// common.ErrForbidden. Admins bypass the ownership check, not the role check.
func (g *Gateway) Authorize(token string, req Requirement) (*Subject, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrNoCredential)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}
	if claims.Kind != auth.KindAccess {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrTokenKindMismatch)
	}

	subject := &Subject{ID: claims.Subject, Role: claims.Role}

	if req.Role != "" && subject.Role != req.Role {
		return nil, fmt.Errorf("%w: role %q required", common.ErrForbidden, req.Role)
	}
	if req.OwnerID != "" && req.OwnerID != subject.ID && subject.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: not the owner", common.ErrForbidden)
	}

	return subject, nil
}

// BearerToken extracts the credential from an Authorization header value.
// A missing header or any scheme other than Bearer yields ErrNoCredential,
// which callers treat the same as an unauthenticated request.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrNoCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrNoCredential
	}
	return token, nil
}
