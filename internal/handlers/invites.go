package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// InvitationHandler serves email invitations.
type InvitationHandler struct {
	svc *services.InvitationService
}

type issueInvitationRequest struct {
	Email        string  `json:"email" validate:"required,email,max=320"`
	Role         *string `json:"role" validate:"omitempty,max=16"`
	CustomRoleID *string `json:"custom_role_id"`
}

type acceptInvitationRequest struct {
	Token string `json:"token" validate:"required,notblank"`
}

// NewInvitationHandler constructs an InvitationHandler.
func NewInvitationHandler(svc *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// POST /api/companies/:id/invitations
func (h *InvitationHandler) Issue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body issueInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}
	in := services.IssueInvitationInput{
		CompanyID:    c.Param("id"),
		Email:        body.Email,
		CustomRoleID: body.CustomRoleID,
	}
	if body.Role != nil {
		in.Role = models.MemberRole(*body.Role).Ptr()
	}
	issued, err := h.svc.Issue(requestContext(c), p, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, issued)
}

// GET /api/companies/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invitations, err := h.svc.List(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitations)
}

// POST /api/invitations/:id/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	issued, err := h.svc.Resend(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, issued)
}

// DELETE /api/invitations/:id
func (h *InvitationHandler) Revoke(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.svc.Revoke(requestContext(c), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/invitations/lookup?token=
func (h *InvitationHandler) Lookup(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, errors.NewValidation("token is required"))
		return
	}
	preview, err := h.svc.Lookup(requestContext(c), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, preview)
}

// POST /api/invitations/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body acceptInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}
	member, err := h.svc.Accept(requestContext(c), p, strings.TrimSpace(body.Token))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}
