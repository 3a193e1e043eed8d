package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
)

// BusinessMetrics holds Prometheus metrics for storefront observability.
// Every method is safe on a nil receiver so handlers work without metrics.
type BusinessMetrics struct {
	// Catalog
	CatalogLoads        *prometheus.CounterVec
	CatalogLoadDuration prometheus.Histogram

	// Browsing
	ListingViews *prometheus.CounterVec
	ProductViews *prometheus.CounterVec

	// Cart
	CartDeltas       *prometheus.CounterVec
	CartEventStreams prometheus.Gauge
}

// NewBusinessMetrics creates the storefront metrics and registers them with
// reg. A nil reg uses the default registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "nahl"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	subsystem := "business"

	return &BusinessMetrics{
		CatalogLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_loads_total",
				Help:      "Catalog fetches by result",
			},
			[]string{"result"}, // ok, unavailable
		),
		CatalogLoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_load_duration_seconds",
				Help:      "Catalog fetch duration including decoding",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		ListingViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "listing_views_total",
				Help:      "Listing page views",
			},
			[]string{"listing", "result"},
		),
		ProductViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_views_total",
				Help:      "Product detail page views",
			},
			[]string{"result"}, // ok, not_found, unavailable
		),
		CartDeltas: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_actions_total",
				Help:      "Cart actions by event and outcome",
			},
			[]string{"event", "outcome"}, // outcome: submitted, suppressed, ignored
		),
		CartEventStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_event_streams",
				Help:      "Open cart change streams",
			},
		),
	}
}

// Result maps an error to a bounded label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsCode(err, domain.EUNAVAILABLE):
		return "unavailable"
	case domain.IsCode(err, domain.ENOTFOUND):
		return "not_found"
	default:
		return "error"
	}
}

// ListingViewed records a listing page view.
func (m *BusinessMetrics) ListingViewed(listing string, err error) {
	if m == nil {
		return
	}
	m.ListingViews.WithLabelValues(listing, Result(err)).Inc()
}

// ProductViewed records a detail page view.
func (m *BusinessMetrics) ProductViewed(err error) {
	if m == nil {
		return
	}
	m.ProductViews.WithLabelValues(Result(err)).Inc()
}

// CartAction records how a cart action was handled.
func (m *BusinessMetrics) CartAction(event, outcome string) {
	if m == nil {
		return
	}
	m.CartDeltas.WithLabelValues(event, outcome).Inc()
}

// StreamOpened tracks an open cart change stream and returns its closer.
func (m *BusinessMetrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.CartEventStreams.Inc()
	return m.CartEventStreams.Dec
}

// ObservedSource records the result and duration of every catalog load.
type ObservedSource struct {
	source  catalog.Source
	metrics *BusinessMetrics
}

// ObserveSource wraps source with load metrics.
func ObserveSource(source catalog.Source, metrics *BusinessMetrics) *ObservedSource {
	return &ObservedSource{source: source, metrics: metrics}
}

// Load implements catalog.Source. Unavailable catalogs are reported to Sentry.
func (s *ObservedSource) Load(ctx context.Context) (*domain.Catalog, error) {
	start := time.Now()
	cat, err := s.source.Load(ctx)

	if s.metrics != nil {
		s.metrics.CatalogLoadDuration.Observe(time.Since(start).Seconds())
		s.metrics.CatalogLoads.WithLabelValues(Result(err)).Inc()
	}
	if err != nil {
		CaptureErrorFromContext(ctx, err, map[string]any{"op": "catalog.load"})
	}
	return cat, err
}
