// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/posthub/internal/app/system/auditlog"
	"github.com/dalemusser/posthub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// appConfigKeys defines the configuration keys for PostHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: POSTHUB_MONGO_URI, POSTHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "posthub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Admin authentication
	{Name: "jwt_secret", Default: "", Desc: "Signing key for admin tokens (required)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Admin token and cookie lifetime (e.g., 24h, 30m)"},
	{Name: "auth_cookie_name", Default: auth.DefaultCookieName, Desc: "Cookie carrying the admin token"},
	{Name: "allow_admin_registration", Default: true, Desc: "Expose POST /v1/admin/register-admin"},
	{Name: "login_rate_limit", Default: 10, Desc: "Admin login attempts per minute per client IP"},

	// File storage configuration
	{Name: "storage_type", Default: StorageLocal, Desc: "Storage backend: 'local' or 'minio'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local files"},

	// MinIO configuration
	{Name: "minio_endpoint", Default: "", Desc: "MinIO/S3 endpoint host:port"},
	{Name: "minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "minio_bucket", Default: "posthub", Desc: "MinIO bucket name"},
	{Name: "minio_use_ssl", Default: false, Desc: "Use HTTPS for MinIO"},
	{Name: "minio_public_url", Default: "", Desc: "Public base URL for stored objects"},

	// Dashboard
	{Name: "dashboard_timezone", Default: "UTC", Desc: "Time zone for dashboard day boundaries"},
	{Name: "dashboard_workers", Default: 4, Desc: "Concurrent per-day queries for userPostCorrelation"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.ModeAll, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: auditlog.ModeAll, Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps all)"},
	{Name: "audit_purge_interval", Default: "6h", Desc: "How often the audit purge runs"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, POSTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "POSTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Auth
		JWTSecret:              appValues.String("jwt_secret"),
		JWTTTL:                 appValues.Duration("jwt_ttl", 24*time.Hour),
		AuthCookieName:         appValues.String("auth_cookie_name"),
		AllowAdminRegistration: appValues.Bool("allow_admin_registration"),
		LoginRateLimit:         appValues.Int("login_rate_limit"),

		// File storage
		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// MinIO
		MinioEndpoint:  appValues.String("minio_endpoint"),
		MinioAccessKey: appValues.String("minio_access_key"),
		MinioSecretKey: appValues.String("minio_secret_key"),
		MinioBucket:    appValues.String("minio_bucket"),
		MinioUseSSL:    appValues.Bool("minio_use_ssl"),
		MinioPublicURL: appValues.String("minio_public_url"),

		// Dashboard
		DashboardTimezone: appValues.String("dashboard_timezone"),
		DashboardWorkers:  appValues.Int("dashboard_workers"),

		// Audit logging
		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditPurgeInterval: appValues.Duration("audit_purge_interval", 6*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Every problem found is reported, not just the first.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}
	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if appCfg.LoginRateLimit < 1 {
		errs = append(errs, fmt.Errorf("login_rate_limit must be at least 1, got %d", appCfg.LoginRateLimit))
	}

	switch appCfg.StorageType {
	case StorageLocal:
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			errs = append(errs, errors.New("storage_local_path is required for local storage"))
		}
	case StorageMinio:
		if appCfg.MinioEndpoint == "" || appCfg.MinioBucket == "" || appCfg.MinioAccessKey == "" || appCfg.MinioSecretKey == "" {
			errs = append(errs, errors.New("minio storage requires minio_endpoint, minio_bucket, minio_access_key and minio_secret_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage_type must be %q or %q, got %q", StorageLocal, StorageMinio, appCfg.StorageType))
	}

	if _, err := time.LoadLocation(appCfg.DashboardTimezone); err != nil {
		errs = append(errs, fmt.Errorf("dashboard_timezone: %w", err))
	}
	if appCfg.DashboardWorkers < 1 {
		errs = append(errs, fmt.Errorf("dashboard_workers must be at least 1, got %d", appCfg.DashboardWorkers))
	}

	if appCfg.AuditRetention < 0 {
		errs = append(errs, fmt.Errorf("audit_retention must not be negative, got %s", appCfg.AuditRetention))
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditPurgeInterval <= 0 {
		errs = append(errs, errors.New("audit_purge_interval must be positive when audit_retention is set"))
	}

	for name, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if !auditlog.IsValidMode(mode) {
			errs = append(errs, fmt.Errorf("%s must be one of all, db, log, off; got %q", name, mode))
		}
	}

	return errors.Join(errs...)
}
