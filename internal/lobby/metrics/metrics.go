// Package metrics holds the lobby's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "breakroom"
	subsystem = "lobby"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	users             prometheus.Gauge
	connections       prometheus.Gauge
	invitesCreated    prometheus.Counter
	invitesResolved   *prometheus.CounterVec
	invitesEvicted    prometheus.Counter
	eventsDropped     *prometheus.CounterVec
	deliveriesDropped *prometheus.CounterVec
}

// New creates the lobby instruments and registers them on reg. A nil reg
// leaves them unregistered, which is what most tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "users",
			Help: "Identified users currently in the lobby.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "connections",
			Help: "Open websocket connections, identified or not.",
		}),
		invitesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "invites_created_total",
			Help: "Invitations created.",
		}),
		invitesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "invites_resolved_total",
			Help: "Invitations resolved, by outcome.",
		}, []string{"outcome"}),
		invitesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "invites_evicted_total",
			Help: "Resolved invitations removed by the retention sweep.",
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "events_dropped_total",
			Help: "Inbound events ignored, by event and reason.",
		}, []string{"event", "reason"}),
		deliveriesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "deliveries_dropped_total",
			Help: "Outbound events not delivered, by event.",
		}, []string{"event"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.users,
			m.connections,
			m.invitesCreated,
			m.invitesResolved,
			m.invitesEvicted,
			m.eventsDropped,
			m.deliveriesDropped,
		)
	}
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) SetUsers(n int) {
	if m == nil {
		return
	}
	m.users.Set(float64(n))
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) InviteCreated() {
	if m == nil {
		return
	}
	m.invitesCreated.Inc()
}

func (m *Metrics) InviteResolved(outcome string) {
	if m == nil {
		return
	}
	m.invitesResolved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) InvitesEvicted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.invitesEvicted.Add(float64(n))
}

func (m *Metrics) EventDropped(event, reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(event, reason).Inc()
}

func (m *Metrics) DeliveryDropped(event string) {
	if m == nil {
		return
	}
	m.deliveriesDropped.WithLabelValues(event).Inc()
}
