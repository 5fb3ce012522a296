package http

import (
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/dmitrijs2005/jobmarket/internal/server/access"
	"github.com/gin-gonic/gin"
)

const (
	subjectKey = "subject"
	tokenKey   = "token"
)

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			l.Error(c.Request.Context(), c.Errors.String(), args...)
		} else {
			l.Info(c.Request.Context(), "Request processed", args...)
		}
	}
}

// authenticate runs the access gateway for role (empty means any role) and
// stores the subject and the raw token for handlers that check ownership.
func (h *handler) authenticate(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := access.BearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			abortWithError(c, err)
			return
		}
		subject, err := h.gateway.Authorize(token, access.Requirement{Role: role})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(subjectKey, subject)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func currentSubject(c *gin.Context) *access.Subject {
	v, ok := c.Get(subjectKey)
	if !ok {
		return nil
	}
	s, _ := v.(*access.Subject)
	return s
}
