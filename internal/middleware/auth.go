package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auditctx"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "userID"
	CtxRequestIDKey = "requestID"

	requestIDHeader = "X-Request-ID"
)

// PrincipalProvisioner maps a verified identity onto a local user, creating it on first sight.
type PrincipalProvisioner interface {
	Provision(ctx context.Context, id *auth.Identity) (*models.User, error)
}

// Authenticate verifies the bearer token, provisions the local user and stores the resulting
// principal on both the gin context and the request context.
func Authenticate(verifier auth.Verifier, provisioner PrincipalProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthenticated)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthenticated)
			c.Abort()
			return
		}

		user, err := provisioner.Provision(ctx, identity)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		principal := &auth.Principal{
			UserID:     user.ID,
			ExternalID: user.ExternalID,
			Email:      user.Email,
			Role:       user.Role,
		}
		ctx = auth.WithPrincipal(ctx, principal)
		ctx = auditctx.WithActor(ctx, auditctx.Actor{
			UserID:    user.ID,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: c.GetString(CtxRequestIDKey),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set(CtxPrincipalKey, principal)
		c.Set(CtxUserIDKey, user.ID)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		// Browsers cannot set headers on websocket upgrades.
		if isWebsocketUpgrade(c) {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, true
			}
		}
		return "", false
	}
	token := strings.TrimSpace(authz[7:])
	return token, token != ""
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
