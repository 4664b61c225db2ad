package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts bus traffic. A nil *Metrics records nothing.
type Metrics struct {
	published   *prometheus.CounterVec
	delivered   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// NewMetrics registers the bus collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notify_events_published_total",
				Help: "Total number of events published on the bus",
			},
			[]string{"event"},
		),
		delivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notify_events_delivered_total",
				Help: "Total number of events queued to subscribers",
			},
			[]string{"event"},
		),
		dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notify_events_dropped_total",
				Help: "Total number of events lost because a subscriber queue was full",
			},
			[]string{"event"},
		),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_subscribers",
			Help: "Number of attached subscribers",
		}),
	}
}

func (m *Metrics) incPublished(event string) {
	if m != nil {
		m.published.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) incDelivered(event string) {
	if m != nil {
		m.delivered.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) incDropped(event string) {
	if m != nil {
		m.dropped.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) addSubscribers(delta int) {
	if m != nil {
		m.subscribers.Add(float64(delta))
	}
}
