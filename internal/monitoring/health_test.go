package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func staticCheck(name string, status ProbeStatus) Check {
	return NewCheck(name, func(context.Context) ProbeResult {
		return ProbeResult{Status: status}
	})
}

func TestHealthManagerAggregatesWorstStatus(t *testing.T) {
	manager := NewHealthManager(time.Second)
	manager.RegisterReadiness(staticCheck("database", StatusUp))
	manager.RegisterReadiness(staticCheck("redis", StatusDegraded))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, StatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "redis", report.Checks[1].Component)

	manager.RegisterReadiness(staticCheck("outbox", StatusDown))
	report = manager.EvaluateReadiness(context.Background())
	require.Equal(t, StatusDown, report.Status)
}

func TestHealthManagerEmptyIsUp(t *testing.T) {
	manager := NewHealthManager(0)
	report := manager.EvaluateLiveness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, StatusUp, report.Status)
	require.Empty(t, report.Checks)
}

func TestHealthManagerRecoversPanickingProbe(t *testing.T) {
	manager := NewHealthManager(time.Second)
	manager.RegisterLiveness(NewCheck("boom", func(context.Context) ProbeResult {
		panic("probe exploded")
	}))
	manager.RegisterLiveness(NewCheck("", nil))

	report := manager.EvaluateLiveness(context.Background())
	require.Len(t, report.Checks, 1)
	require.Equal(t, StatusDown, report.Checks[0].Status)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
}

func TestHealthManagerAppliesDeadline(t *testing.T) {
	manager := NewHealthManager(20 * time.Millisecond)
	manager.RegisterReadiness(NewCheck("slow", func(ctx context.Context) ProbeResult {
		<-ctx.Done()
		return ResultFromError("slow", ctx.Err(), 0)
	}))

	report := manager.EvaluateReadiness(context.Background())
	require.Equal(t, StatusDegraded, report.Status)
}

func TestResultFromError(t *testing.T) {
	require.Equal(t, StatusUp, ResultFromError("db", nil, time.Millisecond).Status)
	require.Equal(t, StatusDown, ResultFromError("db", errors.New("refused"), 0).Status)
	require.Equal(t, StatusDegraded, ResultFromError("db", context.DeadlineExceeded, -1).Status)
}
