// Package metrics holds the service's Prometheus registry and the /metrics endpoint.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	// FeedActivations counts how often each catalog item became the active feed item.
	FeedActivations *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	activations := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "feed_activations_total",
		Help:      "Times a catalog item became the active item of a feed session.",
	}, []string{"item"})
	return &Metrics{Registry: reg, FeedActivations: activations}
}

func (m *Metrics) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
