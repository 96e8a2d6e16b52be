package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		Server: app.ServerConfig{Port: 8000, CORSOrigins: []string{"*"}},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "lynkskill.db"),
		},
		Auth: app.AuthConfig{
			Mode: "jwt",
			JWT:  app.JWTSettings{Secret: "bootstrap-test-secret-with-32-bytes!!", Issuer: "bootstrap-test"},
		},
		Invitations: app.InvitationConfig{BaseURL: "http://localhost:3000"},
	}
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Maintenance.Enabled = true

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(zap.NewNop()) })

	require.NotNil(t, stack.DB)
	require.NotNil(t, stack.Services)
	require.NotNil(t, stack.Cleaner)
	require.Nil(t, stack.Redis)
	require.Nil(t, stack.Kafka)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Nil(t, stack)
}

func TestRuntimeStackShutdownIsNilSafe(t *testing.T) {
	var stack *runtimeStack
	require.NotPanics(t, func() { stack.Shutdown(zap.NewNop()) })
	require.NotPanics(t, func() { (&runtimeStack{}).Shutdown(zap.NewNop()) })
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9100\n"), 0o600))

	cfg, err := loadApplicationConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)

	cfg, err = loadApplicationConfig(file)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)

	_, err = loadApplicationConfig(filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "does not exist")
}

func TestShutdownTimeoutFallsBack(t *testing.T) {
	require.Equal(t, defaultShutdownTimeout, shutdownTimeout(app.ServerConfig{}))
	require.Equal(t, 3*defaultShutdownTimeout, shutdownTimeout(app.ServerConfig{ShutdownTimeout: 3 * defaultShutdownTimeout}))
}
