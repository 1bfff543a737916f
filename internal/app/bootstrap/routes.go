// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"sync"
	"time"

	adminfeature "github.com/dalemusser/posthub/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/posthub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/posthub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/posthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/posthub/internal/app/features/health"
	postsfeature "github.com/dalemusser/posthub/internal/app/features/posts"
	"github.com/dalemusser/posthub/internal/app/store/audit"
	metricsstore "github.com/dalemusser/posthub/internal/app/store/metrics"
	userstore "github.com/dalemusser/posthub/internal/app/store/users"
	"github.com/dalemusser/posthub/internal/app/system/auditlog"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/posthub/internal/app/system/ratelimit"
	"github.com/dalemusser/posthub/internal/app/system/respond"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"github.com/dalemusser/posthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Background resources created by BuildHandler and released in Shutdown.
var (
	bgMu         sync.Mutex
	loginLimiter *ratelimit.LoginLimiter
	auditPurge   *workers.AuditPurge
)

func stopBackground() {
	bgMu.Lock()
	defer bgMu.Unlock()
	if loginLimiter != nil {
		loginLimiter.Stop()
		loginLimiter = nil
	}
	if auditPurge != nil {
		auditPurge.Stop()
		auditPurge = nil
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// PostHub serves a JSON API under /v1: admin accounts and user management,
// posts with reactions and comments, the analytics dashboard and the
// audit trail.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	am, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, appCfg.AuthCookieName, secure, userstore.NewFetcher(db))
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	loc, err := time.LoadLocation(appCfg.DashboardTimezone)
	if err != nil {
		logger.Error("dashboard timezone", zap.String("tz", appCfg.DashboardTimezone), zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit)
	bgMu.Lock()
	loginLimiter = limiter
	bgMu.Unlock()

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	var storage uploads.Checker
	if c, ok := deps.Uploads.(uploads.Checker); ok {
		storage = c
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, storage, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored avatars and post images
	if appCfg.StorageType == StorageLocal {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	adminHandler := adminfeature.NewHandler(db, am, deps.Uploads, limiter, appCfg.AllowAdminRegistration, errLog, auditLog, logger)
	postsHandler := postsfeature.NewHandler(db, deps.Uploads, errLog, auditLog, logger)
	dashboardHandler := dashboardfeature.NewHandler(metricsstore.New(db), loc, appCfg.DashboardWorkers, errLog, logger)
	auditHandler := auditlogfeature.NewHandler(db, loc, errLog, logger)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Mount("/admin", adminfeature.Routes(adminHandler))
		v1.Mount("/post", postsfeature.Routes(postsHandler, am))
		v1.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, am))
		v1.Mount("/audit", auditlogfeature.Routes(auditHandler, am))
	})

	return r, nil
}
