package service

import (
	"log/slog"

	"github.com/jerseyretro/storefront/internal/observability/metrics"
)

// Telemetry bundles the optional logging and metrics dependencies shared by services.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics // nil records nothing
}

func (t Telemetry) logger(component string) *slog.Logger {
	l := t.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}
