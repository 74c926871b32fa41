// Package metrics contains the Prometheus metrics of the estimation
// service and the batch runner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveEstimations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pprate_active_estimations",
			Help: "A gauge of estimations currently running.",
		},
		[]string{"source"})
	EstimateCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pprate_estimates_total",
			Help: "Number of successful estimations by phase and confidence.",
		},
		[]string{"source", "phase", "confidence"},
	)
	EstimateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pprate_estimate_errors_total",
			Help: "Number of failed estimations of each type.",
		},
		[]string{"source", "error"},
	)
	CapacityMbps = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pprate_capacity_mbps",
			Help: "A histogram of estimated capacities.",
			Buckets: []float64{
				.1, .15, .25, .4, .6,
				1, 1.5, 2.5, 4, 6,
				10, 15, 25, 40, 60,
				100, 150, 250, 400, 600,
				1000, 2500, 10000},
		},
		[]string{"source"},
	)
	ConvergenceStep = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pprate_convergence_step",
			Help:    "A histogram of the train length phase 2 converged at.",
			Buckets: prometheus.LinearBuckets(3, 3, 13),
		},
	)
	SampleCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pprate_samples",
			Help:    "A histogram of the number of packet pair samples per estimation.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
		[]string{"source"},
	)
)
