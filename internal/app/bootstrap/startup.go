// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/posthub/internal/app/store/audit"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/app/system/uploads"
	"github.com/dalemusser/posthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// bucketEnsurer is implemented by object stores that can create their bucket.
type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		c := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("short", c.Short),
			zap.Duration("medium", c.Medium),
			zap.Duration("long", c.Long),
			zap.Duration("dashboard", c.Dashboard),
		)
	}

	if b, ok := deps.Uploads.(bucketEnsurer); ok {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		if err := b.EnsureBucket(ctx); err != nil {
			logger.Error("ensure upload bucket failed", zap.Error(err))
			return fmt.Errorf("ensure upload bucket: %w", err)
		}
	}
	if c, ok := deps.Uploads.(uploads.Checker); ok {
		if err := c.Check(ctx); err != nil {
			logger.Warn("upload storage check failed", zap.Error(err))
		}
	}

	if appCfg.AuditRetention > 0 {
		w := workers.NewAuditPurge(audit.New(deps.MongoDatabase), logger, appCfg.AuditPurgeInterval, appCfg.AuditRetention)
		w.Start()
		bgMu.Lock()
		auditPurge = w
		bgMu.Unlock()
	}
	return nil
}
