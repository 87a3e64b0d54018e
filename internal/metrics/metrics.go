package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "settlement_"

var (
	registerOnce sync.Once

	runsTotal  *prometheus.CounterVec
	runLatency *prometheus.HistogramVec

	investmentsSettledTotal prometheus.Counter
	investmentsFailedTotal  prometheus.Counter
	roiDistributedTotal     prometheus.Counter
	commissionsTotal        prometheus.Counter
)

// Init registers the settlement metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		runsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total settlement runs by terminal status",
			},
			[]string{"status"},
		)
		runLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "run_latency_seconds",
				Help:    "Settlement run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		)
		investmentsSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "investments_settled_total",
			Help: "Total investments credited across runs",
		})
		investmentsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "investments_failed_total",
			Help: "Total per-investment failures across runs",
		})
		roiDistributedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "roi_distributed_total",
			Help: "Total daily returns credited, in rupees",
		})
		commissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "commissions_distributed_total",
			Help: "Total referral commissions credited, in rupees",
		})

		prometheus.MustRegister(
			runsTotal, runLatency,
			investmentsSettledTotal, investmentsFailedTotal,
			roiDistributedTotal, commissionsTotal,
		)
	})
}

// ObserveRun records one run outcome. No-op before Init.
func ObserveRun(status string, seconds float64) {
	if runsTotal == nil {
		return
	}
	runsTotal.WithLabelValues(status).Inc()
	runLatency.WithLabelValues(status).Observe(seconds)
}

// RecordSettlement adds one run's aggregate counters. No-op before Init.
func RecordSettlement(settled, failed int, roi, commissions float64) {
	if investmentsSettledTotal == nil {
		return
	}
	investmentsSettledTotal.Add(float64(settled))
	investmentsFailedTotal.Add(float64(failed))
	roiDistributedTotal.Add(roi)
	commissionsTotal.Add(commissions)
}
