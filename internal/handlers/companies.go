package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// CompanyHandler serves companies, their members, custom roles and the shared join code.
type CompanyHandler struct {
	companies *services.CompanyService
	members   *services.MemberService
	codes     *services.CodeJoinService
	audit     *services.AuditService
}

type createCompanyRequest struct {
	Name           string `json:"name" validate:"required,notblank,max=128"`
	Description    string `json:"description" validate:"omitempty,max=4000"`
	MaxTeamMembers *int   `json:"max_team_members" validate:"omitempty,min=1"`
	PolicyAccepted bool   `json:"policy_accepted"`
}

type codeSettingsRequest struct {
	Enabled        *bool      `json:"enabled"`
	ExpiresAt      *time.Time `json:"expires_at"`
	ClearExpiry    bool       `json:"clear_expiry"`
	MaxTeamMembers *int       `json:"max_team_members" validate:"omitempty,min=1"`
	ClearCap       bool       `json:"clear_cap"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type changeRoleRequest struct {
	Role             *string   `json:"role" validate:"omitempty,max=16"`
	CustomRoleID     *string   `json:"custom_role_id"`
	ExtraPermissions *[]string `json:"extra_permissions"`
}

type roleRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=64"`
	Color       string   `json:"color" validate:"omitempty,max=16"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// NewCompanyHandler constructs a CompanyHandler.
func NewCompanyHandler(companies *services.CompanyService, members *services.MemberService, codes *services.CodeJoinService, audit *services.AuditService) *CompanyHandler {
	return &CompanyHandler{companies: companies, members: members, codes: codes, audit: audit}
}

// POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body createCompanyRequest
	if !bindAndValidate(c, &body) {
		return
	}
	company, err := h.companies.Create(requestContext(c), p, services.CreateCompanyInput{
		Name:           body.Name,
		Description:    body.Description,
		MaxTeamMembers: body.MaxTeamMembers,
		PolicyAccepted: body.PolicyAccepted,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, company)
}

// GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.companies.Get(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/companies/:id/code
func (h *CompanyHandler) RegenerateCode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	company, err := h.companies.RegenerateCode(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// PATCH /api/companies/:id/code
func (h *CompanyHandler) UpdateCodeSettings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body codeSettingsRequest
	if !bindAndValidate(c, &body) {
		return
	}
	company, err := h.companies.UpdateCodeSettings(requestContext(c), p, c.Param("id"), services.CodeSettingsInput{
		Enabled:        body.Enabled,
		ExpiresAt:      body.ExpiresAt,
		ClearExpiry:    body.ClearExpiry,
		MaxTeamMembers: body.MaxTeamMembers,
		ClearCap:       body.ClearCap,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// POST /api/join/preview
func (h *CompanyHandler) PreviewCode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body codeRequest
	if !bindCode(c, &body) {
		return
	}
	preview, err := h.codes.Preview(requestContext(c), p, body.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, preview)
}

// POST /api/join
func (h *CompanyHandler) JoinByCode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body codeRequest
	if !bindCode(c, &body) {
		return
	}
	member, err := h.codes.Join(requestContext(c), p, body.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, member)
}

// bindCode binds a code payload without validating it. The workflow reports a malformed code
// only after the caller eligibility checks.
func bindCode(c *gin.Context, body *codeRequest) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		response.Error(c, errors.NewValidation("Invalid JSON payload"))
		return false
	}
	return true
}

// GET /api/companies/:id/members
func (h *CompanyHandler) ListMembers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	members, err := h.members.ListMembers(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// PATCH /api/companies/:id/members/:memberID
func (h *CompanyHandler) ChangeMemberRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body changeRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	in := services.ChangeRoleInput{
		CustomRoleID:     body.CustomRoleID,
		ExtraPermissions: body.ExtraPermissions,
	}
	if body.Role != nil {
		in.Role = models.MemberRole(*body.Role).Ptr()
	}
	member, err := h.members.ChangeRole(requestContext(c), p, c.Param("id"), c.Param("memberID"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}

// DELETE /api/companies/:id/members/:memberID
func (h *CompanyHandler) RemoveMember(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.members.RemoveMember(requestContext(c), p, c.Param("id"), c.Param("memberID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// GET /api/companies/:id/roles
func (h *CompanyHandler) ListRoles(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	roles, err := h.members.ListRoles(requestContext(c), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// POST /api/companies/:id/roles
func (h *CompanyHandler) CreateRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.members.CreateRole(requestContext(c), p, c.Param("id"), roleInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PATCH /api/companies/:id/roles/:roleID
func (h *CompanyHandler) UpdateRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.members.UpdateRole(requestContext(c), p, c.Param("id"), c.Param("roleID"), roleInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/companies/:id/roles/:roleID
func (h *CompanyHandler) DeleteRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.members.DeleteRole(requestContext(c), p, c.Param("id"), c.Param("roleID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/companies/:id/audit
func (h *CompanyHandler) Audit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	entries, err := h.audit.ListForCompany(requestContext(c), p, c.Param("id"), parseIntQuery(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

func roleInput(body roleRequest) services.RoleInput {
	return services.RoleInput{Name: body.Name, Color: body.Color, Permissions: body.Permissions}
}
