package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// InternshipHandler serves internship listings and applying to them.
type InternshipHandler struct {
	internships  *services.InternshipService
	applications *services.ApplicationService
}

type internshipRequest struct {
	Title                     string     `json:"title" validate:"required,notblank,max=200"`
	Description               string     `json:"description" validate:"omitempty,max=10000"`
	Location                  string     `json:"location" validate:"omitempty,max=200"`
	RequiresCoverLetter       bool       `json:"requires_cover_letter"`
	TestAssignmentTitle       *string    `json:"test_assignment_title" validate:"omitempty,max=200"`
	TestAssignmentDescription *string    `json:"test_assignment_description" validate:"omitempty,max=10000"`
	TestAssignmentDueDate     *time.Time `json:"test_assignment_due_date"`
}

type applyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=20000"`
}

// NewInternshipHandler constructs an InternshipHandler.
func NewInternshipHandler(internships *services.InternshipService, applications *services.ApplicationService) *InternshipHandler {
	return &InternshipHandler{internships: internships, applications: applications}
}

// POST /api/companies/:id/internships
func (h *InternshipHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body internshipRequest
	if !bindAndValidate(c, &body) {
		return
	}
	internship, err := h.internships.Create(requestContext(c), p, c.Param("id"), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, internship)
}

// GET /api/companies/:id/internships
func (h *InternshipHandler) ListByCompany(c *gin.Context) {
	rows, err := h.internships.ListByCompany(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GET /api/internships/:id
func (h *InternshipHandler) Get(c *gin.Context) {
	internship, err := h.internships.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, internship)
}

// PATCH /api/internships/:id
func (h *InternshipHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body internshipRequest
	if !bindAndValidate(c, &body) {
		return
	}
	internship, err := h.internships.Update(requestContext(c), p, c.Param("id"), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, internship)
}

// DELETE /api/internships/:id
func (h *InternshipHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.internships.Delete(requestContext(c), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/internships/:id/applications
func (h *InternshipHandler) ListApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.internships.ListApplications(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// POST /api/internships/:id/apply
func (h *InternshipHandler) Apply(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body applyRequest
	if !bindAndValidate(c, &body) {
		return
	}
	application, err := h.applications.Apply(requestContext(c), p, c.Param("id"), body.CoverLetter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, application)
}

func (r internshipRequest) input() services.InternshipInput {
	return services.InternshipInput{
		Title:                     r.Title,
		Description:               r.Description,
		Location:                  r.Location,
		RequiresCoverLetter:       r.RequiresCoverLetter,
		TestAssignmentTitle:       r.TestAssignmentTitle,
		TestAssignmentDescription: r.TestAssignmentDescription,
		TestAssignmentDueDate:     r.TestAssignmentDueDate,
	}
}
