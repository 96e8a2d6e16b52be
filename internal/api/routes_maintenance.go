package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
)

func registerMaintenanceRoutes(group *gin.RouterGroup, adminToken string, handler *handlers.MaintenanceHandler) {
	group.Use(middleware.RequireAdminToken(adminToken))
	group.POST("/cleanup-applications", handler.CleanupApplications)
	group.GET("/security-audit", handler.SecurityAudit)
}
