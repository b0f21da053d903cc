package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "draw_app_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "draw_app_ws_rooms",
			Help: "Current number of rooms with at least one subscriber.",
		},
	)
	wsEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "draw_app_ws_events_delivered_total",
			Help: "Total relay events delivered to clients.",
		},
	)
	wsRecordsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "draw_app_ws_records_dropped_total",
			Help: "Drawing records rejected for exceeding the size cap.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsEventsDelivered, wsRecordsDropped)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRooms(count int) {
	wsRooms.Set(float64(count))
}

func addDelivered(count int) {
	wsEventsDelivered.Add(float64(count))
}

func incDroppedRecords() {
	wsRecordsDropped.Inc()
}
