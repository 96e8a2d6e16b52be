package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// RequireCompanyPermission checks that the authenticated user holds permission in the company
// named by the route parameter param. Must run after Authenticate.
func RequireCompanyPermission(checker *permissions.Checker, permission permissions.Permission, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthenticated)
			c.Abort()
			return
		}
		companyID := c.Param(param)
		if companyID == "" {
			response.Error(c, errors.NewValidation("Company id is required"))
			c.Abort()
			return
		}
		if err := checker.Require(c.Request.Context(), principal.UserID, companyID, permission); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
