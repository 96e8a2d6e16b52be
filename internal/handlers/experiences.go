package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// ExperienceHandler serves student experiences and their review.
type ExperienceHandler struct {
	svc *services.ExperienceService
}

type submitExperienceRequest struct {
	CompanyID   string `json:"company_id" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank,max=10000"`
}

type reviewExperienceRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Grade  *int   `json:"grade"`
}

// NewExperienceHandler constructs an ExperienceHandler.
func NewExperienceHandler(svc *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{svc: svc}
}

// POST /api/experiences
func (h *ExperienceHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body submitExperienceRequest
	if !bindAndValidate(c, &body) {
		return
	}
	experience, err := h.svc.Submit(requestContext(c), p, services.SubmitExperienceInput{
		CompanyID:   body.CompanyID,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, experience)
}

// POST /api/experiences/:id/review
func (h *ExperienceHandler) Review(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body reviewExperienceRequest
	if !bindAndValidate(c, &body) {
		return
	}
	experience, err := h.svc.Review(requestContext(c), p, c.Param("id"), services.ReviewExperienceInput{
		Status: models.ExperienceStatus(body.Status),
		Grade:  body.Grade,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experience)
}
