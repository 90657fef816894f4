package providers

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/modules"
)

// Module names registered by the framework providers.
const (
	ModuleConfig = "framework.config"
	ModuleLogger = "framework.logger"
	ModuleTracer = "framework.tracer"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider exposes the loaded configuration to service
// definitions as "framework.config" (*config.Config).
//
//	services:
//	  http.addr:
//	    module: framework.config.HTTP.Addr
//	    init: value
type ConfigServiceProvider struct {
	modules.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(reg *modules.Registry) {
	reg.Register(ModuleConfig, p.Config)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider exposes the application logger.
//
// Registered modules:
//   - "framework.logger"  → *slog.Logger
type LoggingServiceProvider struct {
	modules.BaseProvider
	Logger *slog.Logger
}

func (p *LoggingServiceProvider) Register(reg *modules.Registry) {
	reg.Register(ModuleLogger, p.Logger)
}

// ── TracingServiceProvider ────────────────────────────────────────────────────

// TracingServiceProvider exposes the tracer. It is deferred: nothing is
// registered until a definition asks for the tracer.
//
// Registered modules:
//   - "framework.tracer"  → trace.Tracer
type TracingServiceProvider struct {
	modules.BaseProvider
	Tracer trace.Tracer
}

func (p *TracingServiceProvider) Register(reg *modules.Registry) {
	reg.Register(ModuleTracer, p.Tracer)
}

func (p *TracingServiceProvider) IsDeferred() bool   { return true }
func (p *TracingServiceProvider) Provides() []string { return []string{ModuleTracer} }
