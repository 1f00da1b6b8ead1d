// Package metrics exposes prometheus instrumentation for the relay.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the relay's prometheus collectors. A nil *Metrics is
// valid and records nothing, so instrumentation can be left unwired in
// tests.
type Metrics struct {
	activeDevices prometheus.Gauge
	devicesTotal  prometheus.Counter
	relays        *prometheus.CounterVec
	broadcasts    *prometheus.CounterVec
	evictions     prometheus.Counter
	droppedSends  prometheus.Counter
}

// New registers the relay collectors with reg (DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		activeDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beamdrop_devices_active",
			Help: "Current number of registered devices.",
		}),
		devicesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamdrop_devices_total",
			Help: "Total device registrations since start.",
		}),
		relays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamdrop_relays_total",
			Help: "Envelopes relayed to a single target, by kind.",
		}, []string{"kind"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamdrop_broadcasts_total",
			Help: "Group broadcasts, by kind.",
		}, []string{"kind"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamdrop_evictions_total",
			Help: "Devices removed by the liveness sweeper.",
		}),
		droppedSends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beamdrop_dropped_sends_total",
			Help: "Outbound messages dropped because a send buffer was full.",
		}),
	}

	reg.MustRegister(
		m.activeDevices,
		m.devicesTotal,
		m.relays,
		m.broadcasts,
		m.evictions,
		m.droppedSends,
	)
	return m
}

func (m *Metrics) DeviceConnected() {
	if m == nil {
		return
	}
	m.activeDevices.Inc()
	m.devicesTotal.Inc()
}

func (m *Metrics) DeviceGone() {
	if m == nil {
		return
	}
	m.activeDevices.Dec()
}

func (m *Metrics) RecordRelay(kind string) {
	if m == nil {
		return
	}
	m.relays.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordBroadcast(kind string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) RecordDroppedSend() {
	if m == nil {
		return
	}
	m.droppedSends.Inc()
}
