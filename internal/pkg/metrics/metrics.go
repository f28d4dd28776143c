// Package metrics exposes ward counters and gauges to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vetward"

// Recorder owns every ward collector. Each Recorder uses its own registry so
// tests can build as many as they need.
type Recorder struct {
	registry *prometheus.Registry

	opDuration       *prometheus.HistogramVec
	admissionsOpened *prometheus.CounterVec
	admissionsClosed *prometheus.CounterVec
	roomFull         *prometheus.CounterVec
	releaseUnderflow *prometheus.CounterVec
	billed           prometheus.Counter
	occupied         *prometheus.GaugeVec
	capacity         *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of ward service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		admissionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_opened_total",
			Help:      "Admissions opened, by room type.",
		}, []string{"room_type"}),
		admissionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_closed_total",
			Help:      "Admissions closed, by outcome.",
		}, []string{"outcome"}),
		roomFull: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_full_rejections_total",
			Help:      "Reservations rejected because the room was at capacity.",
		}, []string{"room"}),
		releaseUnderflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_release_underflow_total",
			Help:      "Releases attempted on a room whose occupancy was already zero.",
		}, []string{"room"}),
		billed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billed_amount_total",
			Help:      "Sum of final bills issued at discharge.",
		}),
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_occupied",
			Help:      "Occupied slots per room type.",
		}, []string{"room_type"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_capacity",
			Help:      "Total slots per room type.",
		}, []string{"room_type"}),
	}
	r.registry.MustRegister(
		r.opDuration,
		r.admissionsOpened,
		r.admissionsClosed,
		r.roomFull,
		r.releaseUnderflow,
		r.billed,
		r.occupied,
		r.capacity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Observe(operation string, success bool, d time.Duration) {
	result := "error"
	if success {
		result = "success"
	}
	r.opDuration.WithLabelValues(operation, result).Observe(d.Seconds())
}

func (r *Recorder) AdmissionOpened(roomType string) {
	r.admissionsOpened.WithLabelValues(roomType).Inc()
}

func (r *Recorder) AdmissionClosed(outcome string) {
	r.admissionsClosed.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Billed(amount float64) {
	if amount > 0 {
		r.billed.Add(amount)
	}
}

func (r *Recorder) RoomFull(number string) {
	r.roomFull.WithLabelValues(number).Inc()
}

func (r *Recorder) ReleaseUnderflow(number string) {
	r.releaseUnderflow.WithLabelValues(number).Inc()
}

func (r *Recorder) SetOccupancy(roomType string, occupied, capacity int) {
	r.occupied.WithLabelValues(roomType).Set(float64(occupied))
	r.capacity.WithLabelValues(roomType).Set(float64(capacity))
}

// Nop satisfies every recorder interface in the ward and records nothing.
type Nop struct{}

func (Nop) Observe(string, bool, time.Duration) {}
func (Nop) AdmissionOpened(string)              {}
func (Nop) AdmissionClosed(string)              {}
func (Nop) Billed(float64)                      {}
func (Nop) RoomFull(string)                     {}
func (Nop) ReleaseUnderflow(string)             {}
func (Nop) SetOccupancy(string, int, int)       {}
