package metrics

import "github.com/ripline/ripline/pkg/batch/core/model"

// NoopRecorder discards all events.
type NoopRecorder struct{}

// NewNoopRecorder returns a Recorder that does nothing.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) JobStarted(jobName string)                                             {}
func (*NoopRecorder) JobFinished(jobName string, execution *model.JobExecution)             {}
func (*NoopRecorder) StepFinished(jobName, stepName string, execution *model.StepExecution) {}
func (*NoopRecorder) ChunkCommitted(jobName, stepName string, itemCount int)                {}
func (*NoopRecorder) ChunkRolledBack(jobName, stepName string)                              {}
func (*NoopRecorder) ItemSkipped(jobName, stepName, phase string)                           {}
