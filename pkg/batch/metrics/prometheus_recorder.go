package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ripline/ripline/pkg/batch/core/model"
)

// PrometheusRecorder exports engine activity as Prometheus metrics.
type PrometheusRecorder struct {
	jobsStarted      *prometheus.CounterVec
	jobsFinished     *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	stepDuration     *prometheus.HistogramVec
	itemsRead        *prometheus.CounterVec
	itemsWritten     *prometheus.CounterVec
	itemsSkipped     *prometheus.CounterVec
	chunksCommitted  *prometheus.CounterVec
	chunksRolledBack *prometheus.CounterVec
}

// NewPrometheusRecorder registers the engine metrics on the given
// registerer and returns the recorder.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		jobsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_jobs_started_total",
			Help: "Number of job executions started.",
		}, []string{"job"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_jobs_finished_total",
			Help: "Number of job executions finished, by terminal status.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_job_duration_seconds",
			Help:    "Wall-clock duration of job executions.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_step_duration_seconds",
			Help:    "Wall-clock duration of step executions.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job", "step"}),
		itemsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_items_read_total",
			Help: "Number of items read per step.",
		}, []string{"job", "step"}),
		itemsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_items_written_total",
			Help: "Number of items written per step.",
		}, []string{"job", "step"}),
		itemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_items_skipped_total",
			Help: "Number of items skipped, by phase.",
		}, []string{"job", "step", "phase"}),
		chunksCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_chunks_committed_total",
			Help: "Number of chunk transactions committed.",
		}, []string{"job", "step"}),
		chunksRolledBack: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_chunks_rolled_back_total",
			Help: "Number of chunk transactions rolled back.",
		}, []string{"job", "step"}),
	}
	reg.MustRegister(
		r.jobsStarted, r.jobsFinished, r.jobDuration, r.stepDuration,
		r.itemsRead, r.itemsWritten, r.itemsSkipped,
		r.chunksCommitted, r.chunksRolledBack,
	)
	return r
}

func (r *PrometheusRecorder) JobStarted(jobName string) {
	r.jobsStarted.WithLabelValues(jobName).Inc()
}

func (r *PrometheusRecorder) JobFinished(jobName string, execution *model.JobExecution) {
	r.jobsFinished.WithLabelValues(jobName, execution.Status.String()).Inc()
	if !execution.StartTime.IsZero() && !execution.EndTime.IsZero() {
		r.jobDuration.WithLabelValues(jobName).Observe(execution.EndTime.Sub(execution.StartTime).Seconds())
	}
}

func (r *PrometheusRecorder) StepFinished(jobName, stepName string, execution *model.StepExecution) {
	if !execution.StartTime.IsZero() && !execution.EndTime.IsZero() {
		r.stepDuration.WithLabelValues(jobName, stepName).Observe(execution.EndTime.Sub(execution.StartTime).Seconds())
	}
	r.itemsRead.WithLabelValues(jobName, stepName).Add(float64(execution.ReadCount))
	r.itemsWritten.WithLabelValues(jobName, stepName).Add(float64(execution.WriteCount))
}

func (r *PrometheusRecorder) ChunkCommitted(jobName, stepName string, itemCount int) {
	r.chunksCommitted.WithLabelValues(jobName, stepName).Inc()
}

func (r *PrometheusRecorder) ChunkRolledBack(jobName, stepName string) {
	r.chunksRolledBack.WithLabelValues(jobName, stepName).Inc()
}

func (r *PrometheusRecorder) ItemSkipped(jobName, stepName, phase string) {
	r.itemsSkipped.WithLabelValues(jobName, stepName, phase).Inc()
}
