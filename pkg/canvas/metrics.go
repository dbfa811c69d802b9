package canvas

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// dragEvents counts pointer gestures by phase (begin, move, end, ignored)
	dragEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_drag_events_total",
			Help: "Total number of drag gestures handled by phase",
		},
		[]string{"phase"},
	)

	// nodePosition tracks the last position written by a drag
	nodePosition = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flowcanvas_node_position",
			Help: "Last dragged position of a node in logical pixels",
		},
		[]string{"node_id", "axis"},
	)

	// ConnectionsSkipped tracks dangling connections omitted by the last
	// published render. Hosts set it; Render itself has no side effects.
	ConnectionsSkipped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowcanvas_connections_skipped",
			Help: "Connections omitted from the last render because an endpoint is missing",
		},
	)
)

func init() {
	prometheus.MustRegister(dragEvents)
	prometheus.MustRegister(nodePosition)
	prometheus.MustRegister(ConnectionsSkipped)
}
