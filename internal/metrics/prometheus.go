// Package metrics records engine turn measurements as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// Recorder implements interview.Observer with Prometheus collectors.
type Recorder struct {
	turnsTotal     *prometheus.CounterVec
	flagsTotal     *prometheus.CounterVec
	genErrorsTotal *prometheus.CounterVec
	turnDuration   *prometheus.HistogramVec
}

// NewRecorder registers the engine collectors on reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		turnsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_turns_total",
				Help: "Questions produced, by stage and source",
			},
			[]string{"stage", "source"},
		),
		flagsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_flags_total",
				Help: "Examinee answers flagged by the quality checks, by concern",
			},
			[]string{"concern"},
		),
		genErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_generation_errors_total",
				Help: "Failed generation calls, by error kind",
			},
			[]string{"kind"},
		),
		turnDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "interview_turn_duration_seconds",
				Help:    "Time to produce one question",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// ObserveTurn counts a produced question and its latency.
func (r *Recorder) ObserveTurn(stage interview.Stage, source interview.Source, elapsed time.Duration) {
	r.turnsTotal.WithLabelValues(stage.String(), string(source)).Inc()
	r.turnDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

// ObserveFlag counts a flagged answer.
func (r *Recorder) ObserveFlag(concern interview.Concern) {
	r.flagsTotal.WithLabelValues(string(concern)).Inc()
}

// ObserveGenerationError counts a failed generation call.
func (r *Recorder) ObserveGenerationError(kind interview.GenerationErrorKind) {
	r.genErrorsTotal.WithLabelValues(string(kind)).Inc()
}
