package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics holds the Prometheus collectors for the storefront service.
type Metrics struct {
	// labels: provider, outcome={success,error,invalid}
	WeatherLookups        *prometheus.CounterVec
	WeatherLookupDuration *prometheus.HistogramVec // labels: provider

	ProductsDecorated prometheus.Counter
	DiscountsApplied  prometheus.Counter

	PreferenceEvents   *prometheus.CounterVec // labels: event={view,search,purchase}
	PreferenceFailures *prometheus.CounterVec // labels: event
	Recommendations    *prometheus.CounterVec // labels: type={personalized,trending}

	OrdersCaptured    prometheus.Counter
	ActivityPublished *prometheus.CounterVec // labels: outcome={success,error}
	StoreMaintenance  *prometheus.CounterVec // labels: outcome
}

func newCollectors(help bool) *Metrics {
	h := func(s string) string {
		if help {
			return s
		}
		return ""
	}
	return &Metrics{
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_lookups_total",
			Help:      h("Weather provider lookups by provider and outcome."),
		}, []string{"provider", "outcome"}),
		WeatherLookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_lookup_duration_seconds",
			Help:      h("Weather provider request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		ProductsDecorated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_decorated_total",
			Help:      h("Products passed through the weather discount decorator."),
		}),
		DiscountsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_discounts_applied_total",
			Help:      h("Products that received a weather discount."),
		}),
		PreferenceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preference_events_total",
			Help:      h("Behavioural events recorded by type."),
		}, []string{"event"}),
		PreferenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preference_failures_total",
			Help:      h("Behavioural events that failed to persist."),
		}, []string{"event"}),
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      h("Recommendation responses by type."),
		}, []string{"type"}),
		OrdersCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_captured_total",
			Help:      h("Orders settled as paid."),
		}),
		ActivityPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_published_total",
			Help:      h("Activity events written to Kafka by outcome."),
		}, []string{"outcome"}),
		StoreMaintenance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_maintenance_runs_total",
			Help:      h("Scheduled store maintenance runs by outcome."),
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors(true)
	prometheus.MustRegister(
		m.WeatherLookups,
		m.WeatherLookupDuration,
		m.ProductsDecorated,
		m.DiscountsApplied,
		m.PreferenceEvents,
		m.PreferenceFailures,
		m.Recommendations,
		m.OrdersCaptured,
		m.ActivityPublished,
		m.StoreMaintenance,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newCollectors(false)
}
