// Package metrics exposes pipeline counters and flight gauges to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"
)

const namespace = "airdarwin"

// Metrics owns a private registry so tests and multiple stations do not
// collide on the global one. A nil *Metrics ignores every observation.
type Metrics struct {
	registry *prometheus.Registry

	lines    prometheus.Counter
	dropped  prometheus.Counter
	frames   prometheus.Counter
	commands *prometheus.CounterVec
	alerts   *prometheus.GaugeVec
	status   *prometheus.GaugeVec
	flight   *prometheus.GaugeVec
}

// New registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_received_total",
			Help: "Telemetry lines read from the link.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_dropped_total",
			Help: "Lines that did not decode into a frame.",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_applied_total",
			Help: "Frames applied to the flight state.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "commands_total",
			Help: "Uplink commands by name and result.",
		}, []string{"command", "result"}),
		alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "alerts",
			Help: "Lines in the latest safety report by tier.",
		}, []string{"tier"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "link_status",
			Help: "1 for the current link status, 0 otherwise.",
		}, []string{"status"}),
		flight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "flight",
			Help: "Latest flight state values.",
		}, []string{"field"}),
	}
	m.registry.MustRegister(
		m.lines, m.dropped, m.frames, m.commands, m.alerts, m.status, m.flight,
		collectors.NewGoCollector(),
	)
	m.ObserveLink(link.StatusDisconnected)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LineReceived counts one raw line and whether it decoded.
func (m *Metrics) LineReceived(decoded bool) {
	if m == nil {
		return
	}
	m.lines.Inc()
	if !decoded {
		m.dropped.Inc()
	}
}

// ObserveFrame records an applied frame and the resulting state.
func (m *Metrics) ObserveFrame(s telemetry.FlightState) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.flight.WithLabelValues("airspeed_kmh").Set(s.Airspeed)
	m.flight.WithLabelValues("altitude_m").Set(s.Altitude)
	m.flight.WithLabelValues("heading_deg").Set(s.Heading)
	m.flight.WithLabelValues("roll_deg").Set(s.Roll)
	m.flight.WithLabelValues("ground_speed_kmh").Set(s.GroundSpeed)
	m.flight.WithLabelValues("energy_j").Set(s.Energy)
	m.flight.WithLabelValues("distance_km").Set(s.DistanceTraveled)
	if s.Battery != nil {
		m.flight.WithLabelValues("battery_pct").Set(*s.Battery)
	}
	armed := 0.0
	if s.Armed {
		armed = 1
	}
	m.flight.WithLabelValues("armed").Set(armed)
}

// ObserveReport records tier sizes of r.
func (m *Metrics) ObserveReport(r safety.Report) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues("critical").Set(float64(len(r.Critical)))
	m.alerts.WithLabelValues("warning").Set(float64(len(r.Warning)))
	m.alerts.WithLabelValues("recommendation").Set(float64(len(r.Recommendation)))
	m.alerts.WithLabelValues("info").Set(float64(len(r.Info)))
}

// ObserveLink marks st as the current link status.
func (m *Metrics) ObserveLink(st link.Status) {
	if m == nil {
		return
	}
	for _, s := range []link.Status{link.StatusDisconnected, link.StatusConnected, link.StatusReceiving, link.StatusNoData} {
		v := 0.0
		if s == st {
			v = 1
		}
		m.status.WithLabelValues(s.String()).Set(v)
	}
}

// CommandSent counts a dispatch attempt.
func (m *Metrics) CommandSent(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commands.WithLabelValues(name, result).Inc()
}
