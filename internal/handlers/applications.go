package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// ApplicationHandler serves the application lifecycle after submission.
type ApplicationHandler struct {
	svc *services.ApplicationService
}

type reviewApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

type acceptOfferRequest struct {
	NotificationID string `json:"notification_id" validate:"omitempty,max=64"`
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(svc *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// GET /api/applications/mine
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListMine(requestContext(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GET /api/assignments/mine
func (h *ApplicationHandler) ListMyAssignments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListMyAssignments(requestContext(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GET /api/projects/mine
func (h *ApplicationHandler) ListMyProjects(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListMyProjects(requestContext(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// POST /api/applications/:id/review
func (h *ApplicationHandler) Review(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body reviewApplicationRequest
	if !bindAndValidate(c, &body) {
		return
	}
	application, err := h.svc.Review(requestContext(c), p, c.Param("id"), models.ApplicationStatus(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, application)
}

// POST /api/applications/:id/accept-offer
func (h *ApplicationHandler) AcceptOffer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body acceptOfferRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &body) {
		return
	}
	project, err := h.svc.AcceptOffer(requestContext(c), p, c.Param("id"), body.NotificationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}
