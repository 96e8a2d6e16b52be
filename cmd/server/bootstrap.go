package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/api"
	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
	"github.com/SimoSabev/LynkSkill-sub003/internal/app/maintenance"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/cache"
	"github.com/SimoSabev/LynkSkill-sub003/internal/database"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring"
	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring/checks"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/outbox"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	"github.com/SimoSabev/LynkSkill-sub003/internal/security"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/mail"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Kafka    *kafkago.Writer
	Services *api.Services
	Cleaner  *maintenance.Cleaner
	Router   *gin.Engine

	stopRelay context.CancelFunc
	relayDone sync.WaitGroup
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}
	repos := repository.New(stack.DB)

	dbStore := cache.NewDatabaseStore(stack.DB)
	var store cache.Store = dbStore
	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
		} else {
			store = cache.NewRedisStore(stack.Redis)
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	resolver := permissions.NewCachedResolver(permissions.NewStoreResolver(repos.Members), store, cfg.Cache.PermissionsTTL)
	checker, err := permissions.NewChecker(resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise permission checker: %w", err)
	}

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}

	syncer, err := newSyncer(ctx, cfg.Identity, log)
	if err != nil {
		return nil, err
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	hub := notifications.NewHub()
	stack.Services, err = api.NewServices(api.ServiceDeps{
		DB:                stack.DB,
		Repos:             repos,
		Checker:           checker,
		Invalidator:       resolver,
		Hub:               hub,
		Syncer:            syncer,
		Mailer:            mailer,
		TopicPrefix:       cfg.Kafka.TopicPrefix,
		InvitationBaseURL: cfg.Invitations.BaseURL,
		InvitationExpiry:  cfg.Invitations.Expiry,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}

	if err := stack.startRelay(repos.Outbox, cfg.Kafka, log); err != nil {
		return nil, err
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = newCleaner(cfg.Maintenance, stack.Services, repos, dbStore)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	logSecurityAudit(ctx, security.NewAuditService(stack.DB, cfg), log)

	health := monitoring.NewHealthManager(0)
	health.RegisterReadiness(checks.Database(stack.DB))
	if stack.Redis != nil {
		health.RegisterReadiness(checks.Redis(stack.Redis))
	}
	if cfg.Kafka.Enabled() {
		health.RegisterReadiness(checks.OutboxBacklog(repos.Outbox, 0, nil))
	}

	stack.Router, err = api.NewRouter(cfg, api.Dependencies{
		DB:        stack.DB,
		Verifier:  verifier,
		Checker:   checker,
		Services:  stack.Services,
		Hub:       hub,
		RateStore: middleware.NewCacheRateStore(store),
		Health:    health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func newVerifier(ctx context.Context, cfg app.AuthConfig) (auth.Verifier, error) {
	if cfg.UsesJWT() {
		jwtSvc, err := auth.NewJWTService(cfg.JWTServiceConfig())
		if err != nil {
			return nil, fmt.Errorf("initialise jwt service: %w", err)
		}
		return jwtSvc, nil
	}

	verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCVerifierConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise oidc verifier: %w", err)
	}
	return verifier, nil
}

func newSyncer(ctx context.Context, cfg app.IdentityConfig, log *zap.Logger) (identity.MetadataSyncer, error) {
	syncCfg := cfg.SyncerConfig()
	if !syncCfg.Enabled() {
		log.Info("identity metadata sync disabled")
		return identity.NopSyncer{}, nil
	}
	syncer, err := identity.NewHTTPSyncer(ctx, syncCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise identity syncer: %w", err)
	}
	return syncer, nil
}

func newCleaner(cfg app.MaintenanceConfig, svc *api.Services, repos *repository.Repositories, dbStore *cache.DatabaseStore) *maintenance.Cleaner {
	return maintenance.NewCleaner(
		maintenance.WithApplications(svc.Applications, cfg.StrictCleanup, cfg.ApplicationSchedule),
		maintenance.WithInvitations(repos.Invitations, cfg.InvitationRetention, cfg.InvitationSchedule),
		maintenance.WithOutbox(repos.Outbox, cfg.OutboxRetention, cfg.OutboxSchedule),
		maintenance.WithAudit(svc.Audit, cfg.AuditRetention, cfg.AuditSchedule),
		maintenance.WithCache(dbStore, cfg.CacheSchedule),
	)
}

func logSecurityAudit(ctx context.Context, audit *security.AuditService, log *zap.Logger) {
	result := audit.Run(ctx)
	for _, check := range result.Checks {
		fields := []zap.Field{zap.String("check", check.ID), zap.String("remediation", check.Remediation)}
		switch check.Status {
		case security.StatusFail:
			log.Error(check.Message, fields...)
		case security.StatusWarn:
			log.Warn(check.Message, fields...)
		}
	}
}

// startRelay publishes outbox events to kafka, or discards them when no broker is configured.
func (s *runtimeStack) startRelay(store outbox.Store, cfg app.KafkaConfig, log *zap.Logger) error {
	var writer outbox.MessageWriter = outbox.NopWriter{}
	if cfg.Enabled() {
		s.Kafka = outbox.NewKafkaWriter(cfg.WriterConfig())
		writer = s.Kafka
		log.Info("outbox relay publishing to kafka", zap.Strings("brokers", cfg.Brokers))
	}

	relay, err := outbox.NewRelay(store, writer, cfg.RelayOptions())
	if err != nil {
		return fmt.Errorf("initialise outbox relay: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopRelay = cancel
	s.relayDone.Add(1)
	go func() {
		defer s.relayDone.Done()
		relay.Run(ctx)
	}()
	return nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
	}

	if s.stopRelay != nil {
		s.stopRelay()
		s.relayDone.Wait()
	}

	if s.Kafka != nil {
		if err := s.Kafka.Close(); err != nil {
			log.Warn("kafka writer shutdown", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	driver := strings.ToLower(dbCfg.Driver)
	if driver == "" {
		driver = "sqlite"
	}
	logger.WithModule("database").Info("database connected", zap.String("driver", driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("failed to close database", zap.Error(err))
	}
}

func shutdownTimeout(cfg app.ServerConfig) time.Duration {
	if cfg.ShutdownTimeout > 0 {
		return cfg.ShutdownTimeout
	}
	return defaultShutdownTimeout
}
