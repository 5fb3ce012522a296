package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/gin-gonic/gin"
)

// Reasons let clients tell "no credential", "bad credential" and "expired
// credential" apart without seeing verification details.
const (
	reasonMissingToken       = "missing_token"
	reasonInvalidToken       = "invalid_token"
	reasonTokenExpired       = "token_expired"
	reasonInvalidCredentials = "invalid_credentials"
)

func tokenReason(err error) string {
	switch {
	case errors.Is(err, common.ErrNoCredential):
		return reasonMissingToken
	case errors.Is(err, common.ErrTokenExpired):
		return reasonTokenExpired
	}
	return reasonInvalidToken
}

func isTokenError(err error) bool {
	return errors.Is(err, common.ErrUnauthenticated) ||
		errors.Is(err, common.ErrNoCredential) ||
		errors.Is(err, common.ErrTokenMalformed) ||
		errors.Is(err, common.ErrTokenInvalidSignature) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrTokenKindMismatch)
}

// statusFor maps an error to a status code and a client-safe body. Causes are
// only echoed for validation failures.
func statusFor(err error) (int, gin.H) {
	switch {
	case isTokenError(err):
		return http.StatusUnauthorized, gin.H{"error": "unauthenticated", "reason": tokenReason(err)}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, gin.H{"error": "unauthenticated", "reason": reasonInvalidCredentials}
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": "forbidden"}
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, gin.H{"error": "not found"}
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, gin.H{"error": "already exists"}
	case errors.Is(err, common.ErrTimeout):
		return http.StatusGatewayTimeout, gin.H{"error": "search timed out"}
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "store unavailable"}
	}
	return http.StatusInternalServerError, gin.H{"error": "internal error"}
}

func abortWithError(c *gin.Context, err error) {
	code, body := statusFor(err)
	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer error="`+body["reason"].(string)+`"`)
	}
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, body)
}
