package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ProviderCalls      *prometheus.CounterVec
	ProviderLatency    *prometheus.HistogramVec
	ProviderRecords    *prometheus.CounterVec
	Resolutions        *prometheus.CounterVec
	SchedulesPersisted prometheus.Counter
	Geolocations       *prometheus.CounterVec
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "The total number of calls made to upstream providers",
		}, []string{"provider", "operation", "outcome"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Time taken by upstream provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		ProviderRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_records_total",
			Help:      "Canonical records accepted from providers",
		}, []string{"provider"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_resolutions_total",
			Help:      "Flight resolutions by the source that answered them",
		}, []string{"source"}),
		SchedulesPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_persisted_total",
			Help:      "The total number of schedules written back to the store",
		}),
		Geolocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geolocations_total",
			Help:      "Nearby-airport resolutions by the path that answered them",
		}, []string{"path"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// ObserveProviderCall records one upstream call. Safe on a nil receiver.
func (m *Metrics) ObserveProviderCall(provider, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, operation, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// AddProviderRecords counts accepted records. Safe on a nil receiver.
func (m *Metrics) AddProviderRecords(provider string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ProviderRecords.WithLabelValues(provider).Add(float64(n))
}

// ObserveResolution counts a resolution by its source. Safe on a nil receiver.
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(source).Inc()
}

// AddPersisted counts schedules written back. Safe on a nil receiver.
func (m *Metrics) AddPersisted(n int) {
	if m == nil {
		return
	}
	m.SchedulesPersisted.Add(float64(n))
}

// ObserveGeolocation counts a nearby-airport resolution path. Safe on a nil receiver.
func (m *Metrics) ObserveGeolocation(path string) {
	if m == nil {
		return
	}
	m.Geolocations.WithLabelValues(path).Inc()
}

// IncError counts a failed operation. Safe on a nil receiver.
func (m *Metrics) IncError(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}
