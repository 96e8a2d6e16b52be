package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
)

func registerCompanyRoutes(api *gin.RouterGroup, handler *handlers.CompanyHandler, checker *permissions.Checker) {
	api.POST("/companies", handler.Create)

	company := api.Group("/companies/:id")
	{
		company.GET("", handler.Get)
		company.GET("/audit", middleware.RequireCompanyPermission(checker, permissions.ManageCompany, "id"), handler.Audit)

		company.POST("/code", handler.RegenerateCode)
		company.PATCH("/code", handler.UpdateCodeSettings)

		company.GET("/members", middleware.RequireCompanyPermission(checker, permissions.ViewMembers, "id"), handler.ListMembers)
		company.PATCH("/members/:memberID", handler.ChangeMemberRole)
		company.DELETE("/members/:memberID", handler.RemoveMember)

		company.GET("/roles", handler.ListRoles)
		company.POST("/roles", handler.CreateRole)
		company.PATCH("/roles/:roleID", handler.UpdateRole)
		company.DELETE("/roles/:roleID", handler.DeleteRole)
	}

	join := api.Group("/join")
	{
		join.POST("", handler.JoinByCode)
		join.POST("/preview", handler.PreviewCode)
	}
}
