package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gridcast-dev/gridcast/pkg/hub"
)

// namespace is the Prometheus namespace for all server metrics.
const namespace = "gridcast"

// Metrics aggregates the server's Prometheus instruments.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	MessagesReceived prometheus.Counter
	MessagesSent     prometheus.Counter
	DecodeErrors     prometheus.Counter
	WriteErrors      prometheus.Counter

	LagEvents      prometheus.Counter
	LagDisconnects prometheus.Counter

	DriverTicks prometheus.Counter

	CommandDuration *prometheus.HistogramVec
}

// NewMetrics registers the server's instruments with reg and binds the
// hub's internal counters as read-through collectors.
func NewMetrics(reg prometheus.Registerer, h *hub.Hub) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently open client connections.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Client connections accepted since startup.",
		}),
		MessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Well-formed commands received from clients.",
		}),
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages relayed to client sockets.",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Inbound frames dropped because they failed to decode.",
		}),
		WriteErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "Socket write failures.",
		}),
		LagEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lag_events_total",
			Help:      "Times a subscriber was told it missed messages.",
		}),
		LagDisconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lag_disconnects_total",
			Help:      "Connections torn down for lagging too far behind.",
		}),
		DriverTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "driver_ticks_total",
			Help:      "Periodic driver ticks that published an event.",
		}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Dispatch latency per command type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hub_subscribers",
		Help:      "Current hub subscribers.",
	}, func() float64 { return float64(h.Stats().Subscribers) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hub_published_total",
		Help:      "Messages published through the hub.",
	}, func() float64 { return float64(h.Stats().Published) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hub_dropped_total",
		Help:      "Messages dropped for slow subscribers.",
	}, func() float64 { return float64(h.Stats().Dropped) })

	return m
}
