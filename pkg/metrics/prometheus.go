package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records quote feed metrics in Prometheus.
// ⭐ SSOT: 메트릭 이름은 여기서만 정의
type Recorder struct {
	gatherer prometheus.Gatherer

	batches      *prometheus.CounterVec
	batchErrors  *prometheus.CounterVec
	refreshTime  prometheus.Histogram
	feedStatus   prometheus.Gauge
	quotesKnown  prometheus.Gauge
	forecastRuns *prometheus.CounterVec
}

// New registers the recorder on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the recorder on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantedge_quote_batches_total",
				Help: "Quote batches dispatched, by outcome",
			},
			[]string{"outcome"},
		),
		batchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantedge_quote_batch_errors_total",
				Help: "Quote batch failures, by error kind",
			},
			[]string{"kind"},
		),
		refreshTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quantedge_quote_refresh_duration_seconds",
				Help:    "Wall time of a full refresh cycle",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
			},
		),
		feedStatus: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "quantedge_feed_status",
				Help: "Connectivity status (0=connecting, 1=live, 2=error)",
			},
		),
		quotesKnown: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "quantedge_quotes_known",
				Help: "Number of symbols with a known quote",
			},
		),
		forecastRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantedge_forecasts_total",
				Help: "Forecast computations, by result",
			},
			[]string{"result"},
		),
	}
}

// RecordBatch records one batch outcome ("ok" or "failed").
func (r *Recorder) RecordBatch(outcome string) {
	r.batches.WithLabelValues(outcome).Inc()
}

// RecordBatchError records a batch failure kind ("timeout", "network").
func (r *Recorder) RecordBatchError(kind string) {
	r.batchErrors.WithLabelValues(kind).Inc()
}

// RecordRefresh records cycle duration in seconds.
func (r *Recorder) RecordRefresh(seconds float64) {
	r.refreshTime.Observe(seconds)
}

// SetFeedStatus sets the connectivity gauge.
func (r *Recorder) SetFeedStatus(code int) {
	r.feedStatus.Set(float64(code))
}

// SetQuotesKnown sets the number of known quotes.
func (r *Recorder) SetQuotesKnown(n int) {
	r.quotesKnown.Set(float64(n))
}

// RecordForecast records a forecast result ("ok" or "error").
func (r *Recorder) RecordForecast(result string) {
	r.forecastRuns.WithLabelValues(result).Inc()
}

// Handler serves the registry in Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
