package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers/testutil"
)

type issuedPayload struct {
	Invitation struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"invitation"`
	Link string `json:"link"`
}

func issueInvitation(t *testing.T, env *testutil.Env, companyID, ownerToken, email string) (issuedPayload, string) {
	t.Helper()

	w := env.Request(http.MethodPost, "/api/companies/"+companyID+"/invitations", map[string]any{
		"email": email,
		"role":  "MEMBER",
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var issued issuedPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &issued)
	link, err := url.Parse(issued.Link)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	return issued, token
}

func TestInvitationHandler_IssueLookupAccept(t *testing.T) {
	env := testutil.NewEnv(t)
	company, owner := env.CreateCompany("Inviting")

	issued, token := issueInvitation(t, env, company.ID, owner, "invitee@example.com")
	require.Equal(t, "invitee@example.com", issued.Invitation.Email)

	lookup := env.Request(http.MethodGet, "/api/invitations/lookup?token="+url.QueryEscape(token), nil, "")
	require.Equal(t, http.StatusOK, lookup.Code, lookup.Body.String())
	var preview map[string]any
	testutil.DecodeInto(t, testutil.DecodeResponse(t, lookup).Data, &preview)
	require.Equal(t, "Inviting", preview["company_name"])
	require.Equal(t, "pending", preview["status"])

	_, stranger := env.User("stranger@example.com", "")
	mismatch := env.Request(http.MethodPost, "/api/invitations/accept", map[string]string{"token": token}, stranger)
	testutil.RequireError(t, mismatch, http.StatusForbidden, "invitation.email_mismatch")

	_, invitee := env.User("invitee@example.com", "")
	accept := env.Request(http.MethodPost, "/api/invitations/accept", map[string]string{"token": token}, invitee)
	require.Equal(t, http.StatusOK, accept.Code, accept.Body.String())

	again := env.Request(http.MethodPost, "/api/invitations/accept", map[string]string{"token": token}, invitee)
	testutil.RequireError(t, again, http.StatusConflict, "invitation.already_accepted")
}

func TestInvitationHandler_LookupUnknownToken(t *testing.T) {
	env := testutil.NewEnv(t)

	missing := env.Request(http.MethodGet, "/api/invitations/lookup", nil, "")
	testutil.RequireError(t, missing, http.StatusBadRequest, "VALIDATION_ERROR")

	unknown := env.Request(http.MethodGet, "/api/invitations/lookup?token=does-not-exist", nil, "")
	testutil.RequireError(t, unknown, http.StatusNotFound, "invitation.not_found")
}

func TestInvitationHandler_RequiresInvitePermission(t *testing.T) {
	env := testutil.NewEnv(t)
	company, owner := env.CreateCompany("Guarded")
	_, outsider := env.User("outsider@example.com", "")

	w := env.Request(http.MethodPost, "/api/companies/"+company.ID+"/invitations", map[string]any{
		"email": "friend@example.com",
		"role":  "MEMBER",
	}, outsider)
	testutil.RequireError(t, w, http.StatusForbidden, "PERMISSION_DENIED")

	w = env.Request(http.MethodPost, "/api/companies/"+company.ID+"/invitations", map[string]any{
		"email": "not-an-email",
	}, owner)
	testutil.RequireError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestInvitationHandler_ResendAndRevoke(t *testing.T) {
	env := testutil.NewEnv(t)
	company, owner := env.CreateCompany("Revoking")
	issued, oldToken := issueInvitation(t, env, company.ID, owner, "maybe@example.com")

	resend := env.Request(http.MethodPost, "/api/invitations/"+issued.Invitation.ID+"/resend", nil, owner)
	require.Equal(t, http.StatusOK, resend.Code, resend.Body.String())

	stale := env.Request(http.MethodGet, "/api/invitations/lookup?token="+url.QueryEscape(oldToken), nil, "")
	testutil.RequireError(t, stale, http.StatusNotFound, "invitation.not_found")

	revoke := env.Request(http.MethodDelete, "/api/invitations/"+issued.Invitation.ID, nil, owner)
	require.Equal(t, http.StatusOK, revoke.Code, revoke.Body.String())

	list := env.Request(http.MethodGet, "/api/companies/"+company.ID+"/invitations", nil, owner)
	require.Equal(t, http.StatusOK, list.Code, list.Body.String())
	var rows []map[string]any
	testutil.DecodeInto(t, testutil.DecodeResponse(t, list).Data, &rows)
	require.Empty(t, rows)
}
