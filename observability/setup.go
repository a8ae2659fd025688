package observability

import (
	"context"
	"errors"
	"time"
)

// Config is the telemetry section of an application config.
type Config struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// Setup installs the tracer and meter providers described by cfg. A disabled
// config installs nothing and returns a no-op shutdown.
func Setup(ctx context.Context, cfg Config, serviceName, serviceVersion string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tc := DefaultTracerConfig(serviceName)
	mc := DefaultMeterConfig(serviceName)
	tc.ServiceVersion, mc.ServiceVersion = serviceVersion, serviceVersion
	if cfg.Endpoint != "" {
		tc.Endpoint, mc.Endpoint = cfg.Endpoint, cfg.Endpoint
	}
	if cfg.Environment != "" {
		tc.Environment, mc.Environment = cfg.Environment, cfg.Environment
	}
	tc.Insecure, mc.Insecure = cfg.Insecure, cfg.Insecure
	if cfg.SampleRate > 0 {
		tc.SampleRate = cfg.SampleRate
	}
	if cfg.Interval > 0 {
		mc.Interval = cfg.Interval
	}

	tp, err := InitTracer(ctx, tc)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
