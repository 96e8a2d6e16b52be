package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
)

const (
	defaultApplicationSpec = "@hourly"
	defaultInvitationSpec  = "@daily"
	defaultOutboxSpec      = "@daily"
	defaultAuditSpec       = "@daily"
	defaultCacheSpec       = "@every 10m"

	defaultInvitationRetention = 30 * 24 * time.Hour
	defaultOutboxRetention     = 7 * 24 * time.Hour
	defaultAuditRetention      = 90 * 24 * time.Hour
)

// ApplicationCleaner removes applications whose test assignment deadline has passed.
type ApplicationCleaner interface {
	CleanupExpired(ctx context.Context, strict bool) (services.CleanupResult, error)
}

// InvitationPruner drops unaccepted invitations that expired before cutoff.
type InvitationPruner interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OutboxPruner drops published events processed before cutoff.
type OutboxPruner interface {
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPruner enforces audit log retention.
type AuditPruner interface {
	CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// CachePurger removes expired rows from the database backed cache.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// Cleaner coordinates background maintenance tasks such as removing expired applications,
// pruning stale invitations and published events, and enforcing audit retention.
type Cleaner struct {
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	applications ApplicationCleaner
	strict       bool
	invitations  InvitationPruner
	outbox       OutboxPruner
	audit        AuditPruner
	cache        CachePurger

	applicationSchedule string
	invitationSchedule  string
	outboxSchedule      string
	auditSchedule       string
	cacheSchedule       string

	invitationRetention time.Duration
	outboxRetention     time.Duration
	auditRetention      time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention cutoffs.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithApplications enables expired application cleanup. strict also removes the projects and
// experiences tied to those applications.
func WithApplications(svc ApplicationCleaner, strict bool, spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.applications = svc
		cleaner.strict = strict
		if spec != "" {
			cleaner.applicationSchedule = spec
		}
	}
}

// WithInvitations enables pruning of invitations expired for longer than retention.
func WithInvitations(repo InvitationPruner, retention time.Duration, spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.invitations = repo
		if retention > 0 {
			cleaner.invitationRetention = retention
		}
		if spec != "" {
			cleaner.invitationSchedule = spec
		}
	}
}

// WithOutbox enables pruning of published events older than retention.
func WithOutbox(repo OutboxPruner, retention time.Duration, spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.outbox = repo
		if retention > 0 {
			cleaner.outboxRetention = retention
		}
		if spec != "" {
			cleaner.outboxSchedule = spec
		}
	}
}

// WithAudit enables audit log retention enforcement.
func WithAudit(svc AuditPruner, retention time.Duration, spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.audit = svc
		if retention > 0 {
			cleaner.auditRetention = retention
		}
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithCache enables purging of the database cache. Redis expires keys by itself.
func WithCache(store CachePurger, spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.cache = store
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Jobs without a dependency are skipped.
func NewCleaner(opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		now:                 time.Now,
		log:                 logger.WithModule("maintenance"),
		applicationSchedule: defaultApplicationSpec,
		invitationSchedule:  defaultInvitationSpec,
		outboxSchedule:      defaultOutboxSpec,
		auditSchedule:       defaultAuditSpec,
		cacheSchedule:       defaultCacheSpec,
		invitationRetention: defaultInvitationRetention,
		outboxRetention:     defaultOutboxRetention,
		auditRetention:      defaultAuditRetention,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

func (c *Cleaner) jobs() []job {
	var jobs []job

	if c.applications != nil {
		jobs = append(jobs, job{name: "applications", schedule: c.applicationSchedule, run: func(ctx context.Context) error {
			_, err := c.applications.CleanupExpired(ctx, c.strict)
			return err
		}})
	}
	if c.invitations != nil {
		jobs = append(jobs, job{name: "invitations", schedule: c.invitationSchedule, run: func(ctx context.Context) error {
			removed, err := c.invitations.DeleteExpiredBefore(ctx, c.now().UTC().Add(-c.invitationRetention))
			c.report("invitations", removed, err)
			return err
		}})
	}
	if c.outbox != nil {
		jobs = append(jobs, job{name: "outbox", schedule: c.outboxSchedule, run: func(ctx context.Context) error {
			removed, err := c.outbox.DeleteSentBefore(ctx, c.now().UTC().Add(-c.outboxRetention))
			c.report("outbox", removed, err)
			return err
		}})
	}
	if c.audit != nil {
		jobs = append(jobs, job{name: "audit", schedule: c.auditSchedule, run: func(ctx context.Context) error {
			removed, err := c.audit.CleanupOlderThan(ctx, c.auditRetention)
			c.report("audit", removed, err)
			return err
		}})
	}
	if c.cache != nil {
		jobs = append(jobs, job{name: "cache", schedule: c.cacheSchedule, run: func(ctx context.Context) error {
			_, err := c.cache.PurgeExpired(ctx)
			return err
		}})
	}
	return jobs
}

func (c *Cleaner) report(name string, removed int64, err error) {
	if err == nil && removed > 0 {
		c.log.Info("maintenance pruned rows", zap.String("job", name), zap.Int64("removed", removed))
	}
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	jobs := c.jobs()
	if len(jobs) == 0 {
		return nil
	}

	for _, j := range jobs {
		j := j
		if _, err := c.cron.AddFunc(j.schedule, func() {
			if err := j.run(context.Background()); err != nil {
				c.log.Warn("maintenance job failed", zap.String("job", j.name), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s job: %w", j.name, err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially and returns the combined failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for _, j := range c.jobs() {
		if err := j.run(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", j.name, err))
		}
	}
	return errs
}
