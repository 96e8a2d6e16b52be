package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/api"
	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	sharedtestutil "github.com/SimoSabev/LynkSkill-sub003/internal/database/testutil"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

// AdminToken is the maintenance token configured for every test environment.
const AdminToken = "test-admin-token"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *auth.JWTService
	Services *api.Services
	Config   *app.Config
}

// Option adjusts the configuration before the router is built.
type Option func(cfg *app.Config)

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Server: app.ServerConfig{AdminToken: AdminToken},
		Invitations: app.InvitationConfig{
			BaseURL: "http://localhost:3000",
			Expiry:  7 * 24 * time.Hour,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	repos := repository.New(db)
	checker, err := permissions.NewChecker(permissions.NewStoreResolver(repos.Members))
	require.NoError(t, err)

	hub := notifications.NewHub()
	svc, err := api.NewServices(api.ServiceDeps{
		DB:                db,
		Repos:             repos,
		Checker:           checker,
		Hub:               hub,
		InvitationBaseURL: cfg.Invitations.BaseURL,
		InvitationExpiry:  cfg.Invitations.Expiry,
	})
	require.NoError(t, err)

	router, err := api.NewRouter(cfg, api.Dependencies{
		DB:        db,
		Verifier:  jwtSvc,
		Checker:   checker,
		Services:  svc,
		Hub:       hub,
		RateStore: middleware.NewMemoryRateStore(),
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Services: svc,
		Config:   cfg,
	}
}

// Token issues an access token for an identity named after email. The user is provisioned by
// the first authenticated request.
func (e *Env) Token(email string, role models.UserRole) string {
	e.T.Helper()

	token, err := e.JWT.GenerateAccessToken(auth.AccessTokenInput{
		ExternalID: "ext-" + strings.ToLower(email),
		Email:      email,
		Name:       strings.Split(email, "@")[0],
		Role:       role,
	})
	require.NoError(e.T, err)
	return token
}

// User provisions a user through GET /api/me and returns it along with its token.
func (e *Env) User(email string, role models.UserRole) (*models.User, string) {
	e.T.Helper()

	token := e.Token(email, role)
	w := e.Request(http.MethodGet, "/api/me", nil, token)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &user)
	return &user, token
}

// CompanyPayload captures the company fields returned by the company endpoints.
type CompanyPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OwnerID        string `json:"owner_id"`
	InvitationCode string `json:"invitation_code"`
	CodeEnabled    bool   `json:"code_enabled"`
	MemberCount    int64  `json:"member_count"`
}

// CreateCompany registers a company owned by a fresh COMPANY user and returns it with the
// owner's token.
func (e *Env) CreateCompany(name string) (CompanyPayload, string) {
	e.T.Helper()

	_, token := e.User(strings.ToLower(name)+"-owner@example.com", models.UserRoleCompany)
	w := e.Request(http.MethodPost, "/api/companies", map[string]any{
		"name":            name,
		"description":     "We build things.",
		"policy_accepted": true,
	}, token)
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var company CompanyPayload
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &company)
	require.NotEmpty(e.T, company.ID)
	return company, token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// RequireError asserts an error envelope with the given status and error code.
func RequireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.RequestWithHeaders(method, path, body, token, nil)
}

// RequestWithHeaders is Request with extra request headers.
func (e *Env) RequestWithHeaders(method, path string, body any, token string, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
