package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	TicksTotal      *prometheus.CounterVec
	TickDuration    prometheus.Histogram
	FetchTotal      *prometheus.CounterVec
	EventsTotal     *prometheus.CounterVec
	ListenerPanics  *prometheus.CounterVec
	Listeners       *prometheus.GaugeVec
	RelayClients    prometheus.Gauge
	NotifySendTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_ticks_total",
			Help: "total number of poll ticks",
		}, []string{"status"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watcher_tick_duration_seconds",
			Help:    "duration of completed poll ticks",
			Buckets: prometheus.DefBuckets,
		}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_fetch_total",
			Help: "total number of resource fetches",
		}, []string{"resource", "status"}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_events_total",
			Help: "total number of emitted events",
		}, []string{"kind"}),
		ListenerPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_listener_panics_total",
			Help: "total number of recovered listener panics",
		}, []string{"kind"}),
		Listeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "watcher_listeners",
			Help: "number of registered listeners",
		}, []string{"kind"}),
		RelayClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_clients",
			Help: "number of connected websocket clients",
		}),
		NotifySendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_send_total",
			Help: "total number of push notifications",
		}, []string{"status"}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.TicksTotal)
	reg.MustRegister(m.TickDuration)
	reg.MustRegister(m.FetchTotal)
	reg.MustRegister(m.EventsTotal)
	reg.MustRegister(m.ListenerPanics)
	reg.MustRegister(m.Listeners)
	reg.MustRegister(m.RelayClients)
	reg.MustRegister(m.NotifySendTotal)
}

func (m *Metrics) Disable(reg prometheus.Registerer) {
	reg.Unregister(m.TicksTotal)
	reg.Unregister(m.TickDuration)
	reg.Unregister(m.FetchTotal)
	reg.Unregister(m.EventsTotal)
	reg.Unregister(m.ListenerPanics)
	reg.Unregister(m.Listeners)
	reg.Unregister(m.RelayClients)
	reg.Unregister(m.NotifySendTotal)
}
