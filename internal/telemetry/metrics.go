package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_provider_requests_total",
			Help: "Total number of outbound provider requests",
		},
		[]string{"provider", "operation", "outcome"},
	)

	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripplanner_provider_request_duration_seconds",
			Help:    "Outbound provider request latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	geocodeCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_geocode_cache_total",
			Help: "Geocode cache lookups by result",
		},
		[]string{"result"},
	)

	fuelQuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_fuel_quotes_total",
			Help: "Fuel price quotes served by fuel type and source",
		},
		[]string{"fuel_type", "source"},
	)

	tripPlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_trip_plans_total",
			Help: "Trip plans by outcome",
		},
		[]string{"outcome"},
	)

	fillUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripplanner_fill_ups_total",
			Help: "Fill-ups recorded in the fill-up log",
		},
	)
)

// ObserveProviderRequest records one outbound call. outcome is "ok" or an
// error kind.
func ObserveProviderRequest(provider, operation, outcome string, elapsed time.Duration) {
	providerRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	providerRequestDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

func GeocodeCacheHit()  { geocodeCacheTotal.WithLabelValues("hit").Inc() }
func GeocodeCacheMiss() { geocodeCacheTotal.WithLabelValues("miss").Inc() }

func FuelQuote(fuelType, source string) {
	fuelQuotesTotal.WithLabelValues(fuelType, source).Inc()
}

func TripPlan(outcome string) {
	tripPlansTotal.WithLabelValues(outcome).Inc()
}

func FillUpRecorded() { fillUpsTotal.Inc() }
