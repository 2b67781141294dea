package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OnlineConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatline_online_conns",
		Help: "Current live websocket connections.",
	})

	PushOK = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatline_push_ok_total",
		Help: "Total events queued to a live connection.",
	})
	PushDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatline_push_dropped_total",
		Help: "Total events dropped because an outbound queue was full.",
	})
	PushOffline = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatline_push_offline_total",
		Help: "Total notify calls that found no live connection.",
	})
)

func Register() {
	prometheus.MustRegister(
		OnlineConns,
		PushOK, PushDropped, PushOffline,
	)
}
