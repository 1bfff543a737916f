// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Connections kept open when idle

	// Admin authentication
	JWTSecret              string        // HS256 signing key for admin tokens
	JWTTTL                 time.Duration // Token and cookie lifetime
	AuthCookieName         string        // Cookie carrying the admin token
	AllowAdminRegistration bool          // Mount POST /v1/admin/register-admin
	LoginRateLimit         int           // Login attempts per minute per client IP

	// File storage configuration
	StorageType      string // Storage backend: "local" or "minio"
	StorageLocalPath string // Local storage directory (e.g., "./uploads")
	StorageLocalURL  string // URL prefix local files are served under (e.g., "/uploads")

	// MinIO configuration (only used if StorageType is "minio")
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string // Base URL objects are served from; blank derives it from the endpoint

	// Dashboard
	DashboardTimezone string // IANA zone used for day boundaries
	DashboardWorkers  int    // Concurrent per-day queries in userPostCorrelation

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Audit events older than AuditRetention are purged every
	// AuditPurgeInterval. Zero retention keeps everything.
	AuditRetention     time.Duration
	AuditPurgeInterval time.Duration
}
