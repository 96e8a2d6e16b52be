package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring"
)

const defaultOutboxMaxAge = 15 * time.Minute

// OutboxCounter reports how many events are still waiting to be published.
type OutboxCounter interface {
	CountUnsentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OutboxBacklog reports degraded when events older than maxAge are still unpublished.
func OutboxBacklog(counter OutboxCounter, maxAge time.Duration, now func() time.Time) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultOutboxMaxAge
	}
	if now == nil {
		now = time.Now
	}

	return monitoring.NewCheck("outbox", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if counter == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "outbox disabled"}
		}

		stale, err := counter.CountUnsentBefore(ctx, now().UTC().Add(-maxAge))
		if err != nil {
			return monitoring.ResultFromError("outbox", err, time.Since(start))
		}
		if stale > 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  fmt.Sprintf("%d events unpublished for more than %s", stale, maxAge),
				Duration: time.Since(start),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Duration: time.Since(start)}
	})
}
