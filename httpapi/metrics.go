package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricReceiptsTotal        = "levyreceipt_receipts_total"
	MetricBuildDurationSeconds = "levyreceipt_build_duration_seconds"
	MetricReceiptBytes         = "levyreceipt_receipt_bytes"
)

// Metrics are the receipt counters exposed on /metrics.
type Metrics struct {
	registry      *prometheus.Registry
	receiptsTotal *prometheus.CounterVec
	buildDuration prometheus.Histogram
	receiptBytes  prometheus.Histogram
}

// NewMetrics registers the receipt metrics on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		receiptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricReceiptsTotal,
			Help: "Receipt requests by outcome.",
		}, []string{"outcome"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricBuildDurationSeconds,
			Help:    "Time spent laying out, drawing and serialising a receipt.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		receiptBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricReceiptBytes,
			Help:    "Size of served receipt PDFs.",
			Buckets: prometheus.ExponentialBuckets(8<<10, 2, 8),
		}),
	}
	reg.MustRegister(m.receiptsTotal, m.buildDuration, m.receiptBytes)
	return m
}

func (m *Metrics) observe(outcome string) {
	m.receiptsTotal.WithLabelValues(outcome).Inc()
}
