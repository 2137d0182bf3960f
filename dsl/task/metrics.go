package task

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts task invocations. A nil *Metrics records nothing.
type Metrics struct {
	runs    prometheus.Counter
	stops   prometheus.Counter
	cancels prometheus.Counter
	panics  prometheus.Counter
	active  prometheus.Gauge
}

// NewMetrics creates task metrics and registers them with reg if it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hikari_task_runs_total",
			Help: "Total number of task invocations",
		}),
		stops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hikari_task_stops_total",
			Help: "Total number of invocations that stopped early",
		}),
		cancels: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hikari_task_cancellations_total",
			Help: "Total number of cancelled tasks",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hikari_task_panics_total",
			Help: "Total number of task invocations that panicked",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hikari_task_active",
			Help: "Number of scheduled tasks",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.stops, m.cancels, m.panics, m.active)
	}
	return m
}

func (m *Metrics) incRuns() {
	if m != nil {
		m.runs.Inc()
	}
}

func (m *Metrics) incStops() {
	if m != nil {
		m.stops.Inc()
	}
}

func (m *Metrics) incCancels() {
	if m != nil {
		m.cancels.Inc()
	}
}

func (m *Metrics) incPanics() {
	if m != nil {
		m.panics.Inc()
	}
}

func (m *Metrics) setActive(n int) {
	if m != nil {
		m.active.Set(float64(n))
	}
}
