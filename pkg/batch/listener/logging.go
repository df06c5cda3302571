// Package listener provides ready-made job and step lifecycle listeners.
package listener

import (
	"context"
	"time"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// LoggingJobListener logs job start and end with outcome and duration.
type LoggingJobListener struct{}

// NewLoggingJobListener returns a job listener that logs lifecycle events.
func NewLoggingJobListener() *LoggingJobListener {
	return &LoggingJobListener{}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, execution *model.JobExecution) {
	logger.Infof("Job '%s' starting (execution %s, parameters %s).",
		execution.JobName, execution.ID, execution.Parameters.String())
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, execution *model.JobExecution) {
	logger.Infof("Job '%s' finished with status %s in %s (execution %s).",
		execution.JobName, execution.Status, jobDuration(execution), execution.ID)
	for _, failure := range execution.Failures {
		logger.Warnf("Job '%s' failure: %s", execution.JobName, failure)
	}
}

func jobDuration(execution *model.JobExecution) time.Duration {
	if execution.StartTime.IsZero() || execution.EndTime.IsZero() {
		return 0
	}
	return execution.EndTime.Sub(execution.StartTime).Round(time.Millisecond)
}

// LoggingStepListener logs step start and a count summary at step end.
type LoggingStepListener struct{}

// NewLoggingStepListener returns a step listener that logs lifecycle events.
func NewLoggingStepListener() *LoggingStepListener {
	return &LoggingStepListener{}
}

func (l *LoggingStepListener) BeforeStep(ctx context.Context, execution *model.StepExecution) {
	logger.Infof("Step '%s' starting (execution %s).", execution.StepName, execution.ID)
}

func (l *LoggingStepListener) AfterStep(ctx context.Context, execution *model.StepExecution) {
	logger.Infof("Step '%s' finished with status %s: read=%d write=%d commit=%d rollback=%d filter=%d skip=%d.",
		execution.StepName, execution.Status,
		execution.ReadCount, execution.WriteCount,
		execution.CommitCount, execution.RollbackCount,
		execution.FilterCount, execution.TotalSkipCount())
}
