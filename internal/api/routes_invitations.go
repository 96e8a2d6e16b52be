package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
)

// Lookup is public and mounted by NewRouter.
func registerInvitationRoutes(api *gin.RouterGroup, handler *handlers.InvitationHandler, checker *permissions.Checker) {
	requireInvite := middleware.RequireCompanyPermission(checker, permissions.InviteMembers, "id")
	api.POST("/companies/:id/invitations", requireInvite, handler.Issue)
	api.GET("/companies/:id/invitations", requireInvite, handler.List)

	invitations := api.Group("/invitations")
	{
		invitations.POST("/accept", handler.Accept)
		invitations.POST("/:id/resend", handler.Resend)
		invitations.DELETE("/:id", handler.Revoke)
	}
}
