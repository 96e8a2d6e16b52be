package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// principal returns the authenticated caller, writing a 401 when there is none.
func principal(c *gin.Context) (*auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthenticated)
		return nil, false
	}
	return p, true
}
