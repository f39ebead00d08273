package observability

import (
	"log/slog"

	"github.com/couchcryptid/storm-data-agriculture/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const serviceName = "storm-data-agriculture"

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and installs
// it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}
