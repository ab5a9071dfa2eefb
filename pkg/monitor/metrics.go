package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	ticksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flightbot_monitor_ticks_total",
			Help: "Total number of completed monitoring passes",
		},
	)
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightbot_fare_searches_total",
			Help: "Total number of fare searches, by result",
		},
		[]string{"result"},
	)
	notificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flightbot_notifications_total",
			Help: "Total number of fare notifications delivered",
		},
	)
	activeAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightbot_active_alerts",
			Help: "Number of active alerts seen on the last monitoring pass",
		},
	)
)

func init() {
	prometheus.MustRegister(ticksTotal)
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(activeAlerts)
}
