// Package metrics holds the server's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled requests by service status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pnlcorr_requests_total", Help: "Correlation requests handled, by outcome"},
		[]string{"status"},
	)
	// RequestDuration observes the time spent in each request stage.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pnlcorr_request_stage_seconds",
			Help:    "Time spent in each stage of a correlation request",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage"},
	)
	// ResidentSeries is the number of series in the resident pool.
	ResidentSeries = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pnlcorr_resident_series", Help: "Series held in the resident pool"},
	)
	// ResidentDates is the length of the resident pool date axis.
	ResidentDates = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pnlcorr_resident_dates", Help: "Dates on the resident pool axis"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, ResidentSeries, ResidentDates)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
