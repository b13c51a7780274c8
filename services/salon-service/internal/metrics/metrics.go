package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Salon holds the service's collectors. Every method is safe on a nil
// receiver so tests and tools can run without metrics.
type Salon struct {
	slotQueries   *prometheus.CounterVec
	slotLatency   prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	bookings      *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	outbox        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Salon {
	m := &Salon{
		slotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "availability",
			Name:      "slot_queries_total",
			Help:      "Public slot queries by result (available, none).",
		}, []string{"result"}),
		slotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "availability",
			Name:      "slot_computation_seconds",
			Help:      "Time spent computing available slots for one date.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Slot cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "status_changes_total",
			Help:      "Booking status transitions by target status.",
		}, []string{"status"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox events handed to Kafka, by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotQueries, m.slotLatency, m.cacheLookups, m.bookings, m.statusChanges, m.outbox)
	return m
}

func (m *Salon) ObserveSlotQuery(result string) {
	if m == nil {
		return
	}
	m.slotQueries.WithLabelValues(result).Inc()
}

func (m *Salon) ObserveSlotComputation(d time.Duration) {
	if m == nil {
		return
	}
	m.slotLatency.Observe(d.Seconds())
}

func (m *Salon) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Salon) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Salon) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// ObserveOutboxBatch matches outbox.PublisherConfig.Observe.
func (m *Salon) ObserveOutboxBatch(n int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.outbox.WithLabelValues("error").Inc()
		return
	}
	if n > 0 {
		m.outbox.WithLabelValues("ok").Add(float64(n))
	}
}
