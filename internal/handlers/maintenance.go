package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/security"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// MaintenanceHandler exposes operator triggered jobs.
type MaintenanceHandler struct {
	applications *services.ApplicationService
	audit        *security.AuditService
}

// NewMaintenanceHandler constructs a MaintenanceHandler.
func NewMaintenanceHandler(applications *services.ApplicationService, audit *security.AuditService) *MaintenanceHandler {
	return &MaintenanceHandler{applications: applications, audit: audit}
}

// POST /api/maintenance/cleanup-applications?strict=true
func (h *MaintenanceHandler) CleanupApplications(c *gin.Context) {
	result, err := h.applications.CleanupExpired(requestContext(c), parseBoolQuery(c, "strict"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/maintenance/security-audit
func (h *MaintenanceHandler) SecurityAudit(c *gin.Context) {
	response.Success(c, http.StatusOK, h.audit.Run(requestContext(c)))
}
