package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// UserHandler serves the caller's own profile and permissions.
type UserHandler struct {
	users   *services.UserService
	members *services.MemberService
}

type onboardingRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT COMPANY TEAM_MEMBER"`
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService, members *services.MemberService) *UserHandler {
	return &UserHandler{users: users, members: members}
}

// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	user, err := h.users.Me(requestContext(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/me/onboarding
func (h *UserHandler) CompleteOnboarding(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body onboardingRequest
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.users.CompleteOnboarding(requestContext(c), p, models.UserRole(body.Role))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/me/permissions
func (h *UserHandler) Permissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	perms, err := h.members.MyPermissions(requestContext(c), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}
