package telemetry

import (
	"context"

	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.uber.org/zap"
)

// SetupTracing configures the global OpenTelemetry providers to export to
// Uptrace. It returns false when no DSN is configured, in which case the
// default no-op providers stay in place.
func SetupTracing(cfg *config.Telemetry, version string, logger *zap.Logger) bool {
	if cfg.UptraceDSN == "" {
		logger.Debug("Tracing export disabled")
		return false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(version),
		uptrace.WithDeploymentEnvironment(cfg.Environment),
	)

	logger.Info("Tracing export enabled",
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment))

	return true
}

// ShutdownTracing flushes pending spans.
func ShutdownTracing(ctx context.Context) error {
	return uptrace.Shutdown(ctx)
}
