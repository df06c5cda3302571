package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides a Prometheus-backed Recorder on the default registerer.
var Module = fx.Options(
	fx.Provide(
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
		fx.Annotate(
			NewPrometheusRecorder,
			fx.As(new(Recorder)),
		),
	),
)
