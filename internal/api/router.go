package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
	"github.com/SimoSabev/LynkSkill-sub003/internal/middleware"
	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring"
	"github.com/SimoSabev/LynkSkill-sub003/internal/monitoring/checks"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/security"
)

// Dependencies are the long-lived collaborators the router mounts handlers on.
type Dependencies struct {
	DB        *gorm.DB
	Verifier  auth.Verifier
	Checker   *permissions.Checker
	Services  *Services
	Hub       *notifications.Hub
	RateStore middleware.RateStore
	// Health defaults to a manager probing only the database.
	Health *monitoring.HealthManager
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.DB == nil {
		return nil, errors.New("database handle must be provided")
	}
	if deps.Verifier == nil {
		return nil, errors.New("token verifier must be provided")
	}
	if deps.Checker == nil {
		return nil, errors.New("permission checker must be provided")
	}
	if deps.Services == nil {
		return nil, errors.New("services must be provided")
	}
	if deps.RateStore == nil {
		deps.RateStore = middleware.NewMemoryRateStore()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthManager(0)
		deps.Health.RegisterReadiness(checks.Database(deps.DB))
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	r.Use(middleware.Compression())

	registerHealthRoutes(r, handlers.NewHealthHandler(deps.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	svc := deps.Services

	// Public routes
	public := r.Group("/api")
	public.Use(middleware.WindowRateLimit(deps.RateStore, cfg.RateLimit.PublicMax, cfg.RateLimit.PublicWindow))
	invitationHandler := handlers.NewInvitationHandler(svc.Invitations)
	public.GET("/invitations/lookup", invitationHandler.Lookup)

	maintenanceHandler := handlers.NewMaintenanceHandler(svc.Applications, security.NewAuditService(deps.DB, cfg))
	registerMaintenanceRoutes(r.Group("/api/maintenance"), cfg.Server.AdminToken, maintenanceHandler)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Authenticate(deps.Verifier, svc.Users))
	api.Use(middleware.RateLimitByUser(cfg.RateLimit.PerUserRPS, cfg.RateLimit.PerUserBurst))

	registerUserRoutes(api, handlers.NewUserHandler(svc.Users, svc.Members))
	registerCompanyRoutes(api, handlers.NewCompanyHandler(svc.Companies, svc.Members, svc.Codes, svc.Audit), deps.Checker)
	registerInvitationRoutes(api, invitationHandler, deps.Checker)
	registerInternshipRoutes(api, handlers.NewInternshipHandler(svc.Internships, svc.Applications))
	registerApplicationRoutes(api, handlers.NewApplicationHandler(svc.Applications), handlers.NewExperienceHandler(svc.Experiences))
	registerNotificationRoutes(api, handlers.NewNotificationHandler(svc.Notifications, deps.Hub))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
