package metrics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Horizon offsets mirrored as per-horizon gauges.
var horizons = [4]int{1, 3, 7, 15}

// Recorder implements domain/repository.Metrics using Prometheus.
// client_golang counters and gauges are write-only, so the values needed
// for persisted snapshots are mirrored in atomics.
type Recorder struct {
	requestCount    prometheus.Counter
	predictionCount prometheus.Counter
	requestTime     prometheus.Summary
	predictionTime  prometheus.Summary
	cpuUsage        prometheus.Gauge
	memoryUsage     prometheus.Gauge
	lastPrediction  [4]prometheus.Gauge

	requests atomic.Int64
	cpu      atomic.Uint64 // float64 bits
	memory   atomic.Uint64 // float64 bits
}

// New creates and registers the Prometheus metrics recorder.
func New() *Recorder {
	r := &Recorder{
		requestCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "request_count",
			Help: "App request count",
		}),
		predictionCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prediction_count",
			Help: "Total number of predictions made",
		}),
		requestTime: promauto.NewSummary(prometheus.SummaryOpts{
			Name: "request_processing_seconds",
			Help: "Time spent processing requests",
		}),
		predictionTime: promauto.NewSummary(prometheus.SummaryOpts{
			Name: "prediction_processing_seconds",
			Help: "Time spent processing predictions",
		}),
		cpuUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cpu_usage",
			Help: "CPU usage percent",
		}),
		memoryUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "memory_usage",
			Help: "Memory usage percent",
		}),
	}

	for i, h := range horizons {
		r.lastPrediction[i] = promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("last_prediction_%d_day", h),
			Help: fmt.Sprintf("Latest prediction for the %d-day horizon", h),
		})
	}

	return r
}

// ObserveRequest records one completed HTTP request and its latency.
func (r *Recorder) ObserveRequest(seconds float64) {
	r.requestCount.Inc()
	r.requests.Add(1)
	r.requestTime.Observe(seconds)
}

// RecordPrediction records one completed inference: increments the
// prediction counter, observes latency, and sets the per-horizon gauges.
func (r *Recorder) RecordPrediction(values [4]float64, seconds float64) {
	r.predictionCount.Inc()
	r.predictionTime.Observe(seconds)
	for i, g := range r.lastPrediction {
		g.Set(values[i])
	}
}

// SetResourceUsage updates the CPU and memory gauges.
func (r *Recorder) SetResourceUsage(cpuPercent, memPercent float64) {
	r.cpuUsage.Set(cpuPercent)
	r.memoryUsage.Set(memPercent)
	r.cpu.Store(math.Float64bits(cpuPercent))
	r.memory.Store(math.Float64bits(memPercent))
}

// RequestCount returns the current request counter value.
func (r *Recorder) RequestCount() int64 { return r.requests.Load() }

// CPUUsage returns the last sampled CPU percent.
func (r *Recorder) CPUUsage() float64 { return math.Float64frombits(r.cpu.Load()) }

// MemoryUsage returns the last sampled memory percent.
func (r *Recorder) MemoryUsage() float64 { return math.Float64frombits(r.memory.Load()) }
