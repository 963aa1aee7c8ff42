package observability

import (
	"github.com/masarmall/leasing/internal/observability/logger"
	"github.com/masarmall/leasing/internal/observability/metrics"
	"github.com/masarmall/leasing/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires logging, tracing and the leasing meters shared by the API,
// the invoice scheduler and the portfolio pusher.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		leasingLoggerConfig,
		logger.New,
		leasingTracingConfig,
		tracing.NewProvider,
		leasingMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(startTracing),
	fx.Invoke(registerSchedulerMetrics),
	fx.Invoke(logObservability),
)

func startTracing(_ *sdktrace.TracerProvider) {}

func leasingLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

// leasingTracingConfig samples every trace in dev environments.
func leasingTracingConfig(cfg Config) tracing.Config {
	ratio := cfg.OtelSamplingRatio
	if isDevEnv(cfg.Environment) {
		ratio = 1
	}
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    ratio,
	}
}

func leasingMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
	}
}

func registerSchedulerMetrics(cfg metrics.Config) {
	metrics.SchedulerWithConfig(cfg)
}

func logObservability(log *zap.Logger, cfg Config) {
	log.Info("observability configured",
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("otel_enabled", cfg.OtelEnabled),
		zap.String("otel_protocol", cfg.OtelExporterProtocol),
	)
}
