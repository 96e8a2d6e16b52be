package checks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring"
)

// RedisPinger is the part of a redis client the probe needs.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Redis returns a readiness probe for the permission cache. A nil client means redis is
// disabled and the server runs on the database cache, which is reported as up.
func Redis(client RedisPinger) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}
		result := monitoring.ResultFromError("redis", client.Ping(ctx).Err(), time.Since(start))
		if result.Status == monitoring.StatusDown {
			// Permission lookups fall back to the database when redis is unreachable.
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}
