package access

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/auth"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T) (*Gateway, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("gw-secret", "gw-refresh", time.Hour, 24*time.Hour)
	return NewGateway(tokens), tokens
}

func issue(t *testing.T, s *auth.TokenService, subject, role string) string {
	t.Helper()
	tok, err := s.Issue(subject, role, auth.KindAccess)
	require.NoError(t, err)
	return tok.Value
}

func TestAuthorize_EndToEndRoleCheck(t *testing.T) {
	gw, tokens := newGateway(t)
	token := issue(t, tokens, "u1", models.RoleJobSeeker)

	subject, err := gw.Authorize(token, Requirement{Role: models.RoleJobSeeker})
	require.NoError(t, err)
	assert.Equal(t, "u1", subject.ID)
	assert.Equal(t, models.RoleJobSeeker, subject.Role)

	_, err = gw.Authorize(token, Requirement{Role: models.RoleEmployer})
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}

func TestAuthorize_NoRequirement(t *testing.T) {
	gw, tokens := newGateway(t)

	subject, err := gw.Authorize(issue(t, tokens, "u2", models.RoleEmployer), Requirement{})
	require.NoError(t, err)
	assert.Equal(t, "u2", subject.ID)
}

func TestAuthorize_Ownership(t *testing.T) {
	gw, tokens := newGateway(t)

	tests := []struct {
		name    string
		subject string
		role    string
		owner   string
		wantErr error
	}{
		{"owner", "emp-1", models.RoleEmployer, "emp-1", nil},
		{"other employer", "emp-2", models.RoleEmployer, "emp-1", common.ErrForbidden},
		{"admin override", "root", models.RoleAdmin, "emp-1", nil},
		{"seeker", "u1", models.RoleJobSeeker, "emp-1", common.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Authorize(issue(t, tokens, tt.subject, tt.role), Requirement{OwnerID: tt.owner})
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorize_AdminDoesNotBypassRole(t *testing.T) {
	gw, tokens := newGateway(t)

	_, err := gw.Authorize(issue(t, tokens, "root", models.RoleAdmin), Requirement{Role: models.RoleEmployer, OwnerID: "emp-1"})
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestAuthorize_UnauthenticatedKeepsCause(t *testing.T) {
	gw, tokens := newGateway(t)
	other := auth.NewTokenService("other", "", time.Hour, time.Hour)
	expired := auth.NewTokenService("gw-secret", "", time.Hour, time.Hour,
		auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))

	refresh, err := tokens.Issue("u1", models.RoleJobSeeker, auth.KindRefresh)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		cause error
	}{
		{"empty", "", common.ErrNoCredential},
		{"malformed", "abc", common.ErrTokenMalformed},
		{"bad signature", issue(t, other, "u1", models.RoleJobSeeker), common.ErrTokenInvalidSignature},
		{"expired", issue(t, expired, "u1", models.RoleJobSeeker), common.ErrTokenExpired},
		{"refresh as bearer", refresh.Value, common.ErrTokenKindMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Authorize(tt.token, Requirement{Role: models.RoleJobSeeker})
			require.ErrorIs(t, err, common.ErrUnauthenticated)
			require.ErrorIs(t, err, tt.cause)
			assert.NotErrorIs(t, err, common.ErrForbidden)
			assert.NotContains(t, err.Error(), "gw-secret")
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer   abc", "abc", false},
		{"", "", true},
		{"Bearer", "", true},
		{"Bearer   ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"abc.def.ghi", "", true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, common.ErrNoCredential, tt.header)
			continue
		}
		assert.NoError(t, err, tt.header)
		assert.Equal(t, tt.want, got)
	}
}
