package track

import "github.com/prometheus/client_golang/prometheus"

const (
	suppressReasonRateLimit = "rate_limit"
	suppressReasonFiltered  = "filtered"
)

var (
	dispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Subsystem: "broker",
			Name:      "events_dispatched_total",
			Help:      "Total events fanned out to observers, by kind",
		},
		[]string{"kind"},
	)

	suppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Subsystem: "broker",
			Name:      "notifications_suppressed_total",
			Help:      "Writes stored without notification, by reason",
		},
		[]string{"reason"},
	)

	callbackPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Subsystem: "broker",
			Name:      "callback_panics_total",
			Help:      "Observer callbacks that panicked during fan-out",
		},
	)

	trackablesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trackd",
			Subsystem: "broker",
			Name:      "trackables",
			Help:      "Trackables currently registered",
		},
	)

	observersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trackd",
			Subsystem: "broker",
			Name:      "observers",
			Help:      "Observers currently subscribed",
		},
	)
)

func init() {
	prometheus.MustRegister(dispatchedTotal, suppressedTotal, callbackPanicsTotal, trackablesGauge, observersGauge)
}
