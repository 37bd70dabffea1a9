package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/secretshows/secretshows-server/internal/metrics"
)

// MetricsHandle holds the Prometheus registry and the application collector.
type MetricsHandle struct {
	Registry  *prometheus.Registry
	Collector *metrics.Collector
}

// ProvideMetrics provides a registry with the runtime and application metrics.
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsHandle{
		Registry:  reg,
		Collector: metrics.NewCollector(reg),
	}, nil
}
