package tracing

import (
	"io"

	"caster/misc"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

// Bootstrap installs a jaeger tracer configured from JAEGER_* environment
// variables as the opentracing global tracer. Returns a closer to flush on
// shutdown; tracing is disabled (noop tracer) when configuration fails.
func Bootstrap() io.Closer {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		logrus.Warnf("jaeger configuration failed, tracing disabled: %v", err)
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = misc.GetServiceName()
	}

	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		logrus.Warnf("jaeger tracer creation failed, tracing disabled: %v", err)
		return nil
	}

	opentracing.SetGlobalTracer(tracer)
	return closer
}
