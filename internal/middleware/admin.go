package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/pkg/crypto"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// AdminTokenHeader carries the operator token for maintenance endpoints.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken admits requests presenting token. An empty token disables the guarded
// routes entirely.
func RequireAdminToken(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			response.Error(c, errors.ErrNotFound)
			c.Abort()
			return
		}
		presented := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if presented == "" || !crypto.ConstantTimeEqual(presented, token) {
			response.Error(c, errors.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}
