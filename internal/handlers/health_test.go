package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers/testutil"
	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring"
)

func TestHealth(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, path := range []string{"/health", "/health/ready", "/api/health", "/api/health/live"} {
		w := env.Request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var report monitoring.HealthReport
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &report)
		require.Equal(t, monitoring.StatusUp, report.Status, path)
	}
}

func TestHealthDownWhenDatabaseClosed(t *testing.T) {
	env := testutil.NewEnv(t)
	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var report monitoring.HealthReport
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &report)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "database", report.Checks[0].Component)

	live := env.Request(http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, live.Code)
}
