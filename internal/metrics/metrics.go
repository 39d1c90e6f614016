package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pet_shop"

// Recorder owns the storefront collectors. A nil *Recorder is valid and records nothing,
// which keeps tests free of registry plumbing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	remoteFailures  *prometheus.CounterVec
	boxesPerPack    prometheus.Histogram
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		cartMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "mutations_total",
				Help:      "Cart mutations by operation.",
			},
			[]string{"op"},
		),
		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recommendations",
				Name:      "served_total",
				Help:      "Recommendation lists served, by the strategy that produced them.",
			},
			[]string{"source"},
		),
		remoteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recommendations",
				Name:      "remote_fallbacks_total",
				Help:      "Remote recommender attempts that fell back to local scoring.",
			},
			[]string{"reason"},
		),
		boxesPerPack: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "delivery",
				Name:      "boxes_per_pack",
				Help:      "Number of delivery boxes produced per packing run.",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
	}
	r.registry.MustRegister(r.httpRequests, r.cartMutations, r.recommendations, r.remoteFailures, r.boxesPerPack)
	return r
}

// Registry exposes the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) CartMutation(op string) {
	if r == nil {
		return
	}
	r.cartMutations.WithLabelValues(op).Inc()
}

func (r *Recorder) RecommendationServed(source string) {
	if r == nil {
		return
	}
	r.recommendations.WithLabelValues(source).Inc()
}

func (r *Recorder) RemoteFallback(reason string) {
	if r == nil {
		return
	}
	r.remoteFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) BoxesPacked(n int) {
	if r == nil {
		return
	}
	r.boxesPerPack.Observe(float64(n))
}

// Middleware counts requests by matched route so path parameters do not explode cardinality.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if r == nil {
			return err
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		r.httpRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// RegisterRoutes mounts GET /metrics.
func (r *Recorder) RegisterRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
}
