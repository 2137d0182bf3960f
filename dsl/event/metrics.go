package event

import (
	"reflect"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts published events and handler panics. A nil *Metrics records nothing.
type Metrics struct {
	published *prometheus.CounterVec
	panics    *prometheus.CounterVec
	listeners prometheus.Gauge
}

// NewMetrics creates event metrics and registers them with reg if it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hikari_events_published_total",
			Help: "Total number of published events",
		}, []string{"event"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hikari_event_handler_panics_total",
			Help: "Total number of event handlers that panicked",
		}, []string{"owner"}),
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hikari_event_handlers",
			Help: "Number of registered event handlers",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.published, m.panics, m.listeners)
	}
	return m
}

func (m *Metrics) incPublished(t reflect.Type) {
	if m == nil || t == nil {
		return
	}
	m.published.WithLabelValues(strings.TrimPrefix(t.String(), "*")).Inc()
}

func (m *Metrics) incPanics(owner string) {
	if m != nil {
		m.panics.WithLabelValues(owner).Inc()
	}
}

func (m *Metrics) addListeners(n int) {
	if m != nil && n != 0 {
		m.listeners.Add(float64(n))
	}
}
