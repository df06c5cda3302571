// Package runner drives a job execution through its steps in order.
package runner

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/repository"
	"github.com/ripline/ripline/pkg/batch/metrics"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// JobRunner executes a job's steps sequentially against a job execution,
// persisting state transitions as it goes.
type JobRunner interface {
	Run(ctx context.Context, j job.Job, execution *model.JobExecution, previous *model.JobExecution) error
}

// SimpleJobRunner is the standard JobRunner.
type SimpleJobRunner struct {
	jobRepository repository.JobRepository
	recorder      metrics.Recorder
}

// NewSimpleJobRunner builds a runner over the given repository and recorder.
func NewSimpleJobRunner(jobRepository repository.JobRepository, recorder metrics.Recorder) *SimpleJobRunner {
	if recorder == nil {
		recorder = metrics.NewNoopRecorder()
	}
	return &SimpleJobRunner{jobRepository: jobRepository, recorder: recorder}
}

// Run executes every step of j. previous is the prior execution of the same
// job instance when this run is a restart, nil otherwise. Steps that
// completed in the previous attempt are skipped; steps that did not are
// re-run from their checkpoint.
func (r *SimpleJobRunner) Run(ctx context.Context, j job.Job, execution *model.JobExecution, previous *model.JobExecution) error {
	execution.MarkAsStarted()
	if err := r.jobRepository.UpdateJobExecution(ctx, execution); err != nil {
		return fmt.Errorf("failed to persist job execution start: %w", err)
	}
	r.recorder.JobStarted(j.Name())

	for _, l := range j.Listeners() {
		l.BeforeJob(ctx, execution)
	}

	var runErr *multierror.Error
	for _, step := range j.Steps() {
		select {
		case <-ctx.Done():
			runErr = multierror.Append(runErr, ctx.Err())
		default:
		}
		if runErr.ErrorOrNil() != nil {
			break
		}

		var prevStep *model.StepExecution
		if previous != nil {
			prevStep = previous.FindStepExecution(step.Name())
		}
		if prevStep != nil && prevStep.Status == model.BatchStatusCompleted {
			logger.Infof("Step '%s' already completed in execution %s, skipping.", step.Name(), previous.ID)
			continue
		}

		var stepExecution *model.StepExecution
		if prevStep != nil {
			stepExecution = prevStep.CopyForRestart(execution)
			logger.Infof("Restarting step '%s' from checkpoint of execution %s.", step.Name(), previous.ID)
		} else {
			stepExecution = model.NewStepExecution(step.Name(), execution)
		}

		if err := r.jobRepository.SaveStepExecution(ctx, stepExecution); err != nil {
			runErr = multierror.Append(runErr, fmt.Errorf("failed to persist step execution for '%s': %w", step.Name(), err))
			break
		}

		stepErr := step.Execute(ctx, stepExecution)

		if err := r.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
			runErr = multierror.Append(runErr, fmt.Errorf("failed to persist step execution result for '%s': %w", step.Name(), err))
		}
		r.recorder.StepFinished(j.Name(), step.Name(), stepExecution)

		if stepErr != nil {
			logger.Errorf("Step '%s' of job '%s' failed: %v", step.Name(), j.Name(), stepErr)
			runErr = multierror.Append(runErr, stepErr)
			break
		}
		logger.Infof("Step '%s' of job '%s' completed.", step.Name(), j.Name())
	}

	if err := runErr.ErrorOrNil(); err != nil {
		execution.MarkAsFailed(err)
	} else {
		execution.MarkAsCompleted()
	}

	for _, l := range j.Listeners() {
		l.AfterJob(ctx, execution)
	}

	if err := r.jobRepository.UpdateJobExecution(ctx, execution); err != nil {
		runErr = multierror.Append(runErr, fmt.Errorf("failed to persist job execution result: %w", err))
	}
	r.recorder.JobFinished(j.Name(), execution)

	return runErr.ErrorOrNil()
}
