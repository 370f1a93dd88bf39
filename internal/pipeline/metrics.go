package pipeline

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks pipeline progress. Counters are mirrored into plain atomics
// so the admin API can serve a snapshot without scraping the registry.
type Metrics struct {
	eventsIn       atomic.Uint64
	eventsRejected atomic.Uint64
	lateDropped    atomic.Uint64
	windowsClosed  atomic.Uint64
	winnersEmitted atomic.Uint64

	promEventsIn       prometheus.Counter
	promEventsRejected prometheus.Counter
	promLateDropped    prometheus.Counter
	promWindowsClosed  prometheus.Counter
	promWinnersEmitted prometheus.Counter
	promWatermark      prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		promEventsIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tipstream",
			Name:      "events_in_total",
			Help:      "Fare events read from the source.",
		}),
		promEventsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tipstream",
			Name:      "events_rejected_total",
			Help:      "Malformed fare events rejected at ingestion.",
		}),
		promLateDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tipstream",
			Name:      "late_events_dropped_total",
			Help:      "Events dropped because their window already closed.",
		}),
		promWindowsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tipstream",
			Name:      "windows_closed_total",
			Help:      "Windows closed and emitted by the accumulator.",
		}),
		promWinnersEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tipstream",
			Name:      "winners_emitted_total",
			Help:      "Per-window winners delivered to the sink.",
		}),
		promWatermark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tipstream",
			Name:      "watermark_millis",
			Help:      "Current event-time watermark in milliseconds.",
		}),
	}
}

func (m *Metrics) IncEventsIn() {
	m.eventsIn.Add(1)
	m.promEventsIn.Inc()
}

func (m *Metrics) IncEventsRejected() {
	m.eventsRejected.Add(1)
	m.promEventsRejected.Inc()
}

func (m *Metrics) IncLateDropped() {
	m.lateDropped.Add(1)
	m.promLateDropped.Inc()
}

func (m *Metrics) IncWindowsClosed() {
	m.windowsClosed.Add(1)
	m.promWindowsClosed.Inc()
}

func (m *Metrics) IncWinnersEmitted() {
	m.winnersEmitted.Add(1)
	m.promWinnersEmitted.Inc()
}

func (m *Metrics) SetWatermark(millis int64) {
	m.promWatermark.Set(float64(millis))
}

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	EventsIn       uint64 `json:"events_in"`
	EventsRejected uint64 `json:"events_rejected"`
	LateDropped    uint64 `json:"late_dropped"`
	WindowsClosed  uint64 `json:"windows_closed"`
	WinnersEmitted uint64 `json:"winners_emitted"`
}

func (m *Metrics) Snapshot() Stats {
	return Stats{
		EventsIn:       m.eventsIn.Load(),
		EventsRejected: m.eventsRejected.Load(),
		LateDropped:    m.lateDropped.Load(),
		WindowsClosed:  m.windowsClosed.Load(),
		WinnersEmitted: m.winnersEmitted.Load(),
	}
}
