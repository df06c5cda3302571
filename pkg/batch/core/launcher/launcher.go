// Package launcher resolves a job by name and drives one execution of it,
// enforcing single-run and restart semantics per job instance.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/registry"
	"github.com/ripline/ripline/pkg/batch/core/repository"
	"github.com/ripline/ripline/pkg/batch/core/runner"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

var (
	// ErrJobAlreadyRunning is returned when the job instance has an
	// execution in a non-terminal state.
	ErrJobAlreadyRunning = errors.New("job execution is already running")
	// ErrIncompatibleRestart is returned when the job instance cannot be
	// launched again: it already completed, or the job forbids restarts.
	ErrIncompatibleRestart = errors.New("job instance cannot be restarted")
)

// JobLauncher launches jobs by name.
type JobLauncher interface {
	Launch(ctx context.Context, jobName string, params model.JobParameters) (*model.JobExecution, error)
}

// SimpleJobLauncher is the standard JobLauncher. Launch runs the job to
// completion and returns its final execution.
type SimpleJobLauncher struct {
	registry      *registry.JobRegistry
	jobRepository repository.JobRepository
	jobRunner     runner.JobRunner
}

// NewSimpleJobLauncher wires a launcher over the registry, repository
// and runner.
func NewSimpleJobLauncher(reg *registry.JobRegistry, repo repository.JobRepository, r runner.JobRunner) *SimpleJobLauncher {
	return &SimpleJobLauncher{registry: reg, jobRepository: repo, jobRunner: r}
}

// Launch resolves jobName, creates or restarts an execution for the
// instance identified by (jobName, params), and runs it synchronously.
//
// A running instance rejects the launch with ErrJobAlreadyRunning. A
// completed instance rejects it with ErrIncompatibleRestart. A failed or
// stopped instance is restarted from its checkpoints.
func (l *SimpleJobLauncher) Launch(ctx context.Context, jobName string, params model.JobParameters) (*model.JobExecution, error) {
	j, err := l.registry.Get(jobName)
	if err != nil {
		return nil, err
	}

	if params.Params == nil {
		params = model.NewJobParameters()
	}
	if params.IsEmpty() {
		if inc := j.Incrementer(); inc != nil {
			params = inc.Next(params)
		}
	}

	instance, previous, err := l.resolveInstance(ctx, j, params)
	if err != nil {
		return nil, err
	}

	execution := model.NewJobExecution(instance, params)
	if previous != nil {
		execution.ExecutionContext = previous.ExecutionContext.Copy()
	}
	if err := l.jobRepository.SaveJobExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to persist job execution: %w", err)
	}

	logger.Infof("Launching job '%s' with parameters %s (execution %s).", jobName, params.String(), execution.ID)
	runErr := l.jobRunner.Run(ctx, j, execution, previous)
	if runErr != nil {
		logger.Errorf("Job '%s' execution %s finished with status %s: %v", jobName, execution.ID, execution.Status, runErr)
		return execution, runErr
	}
	logger.Infof("Job '%s' execution %s finished with status %s.", jobName, execution.ID, execution.Status)
	return execution, nil
}

// resolveInstance finds or creates the job instance for the parameter set
// and decides whether this launch is a first run or a restart. It returns
// the instance and, for restarts, the execution to resume from.
func (l *SimpleJobLauncher) resolveInstance(ctx context.Context, j job.Job, params model.JobParameters) (*model.JobInstance, *model.JobExecution, error) {
	instance, err := l.jobRepository.FindJobInstanceByJobNameAndParameters(ctx, j.Name(), params)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to look up job instance: %w", err)
	}
	if instance == nil {
		instance = model.NewJobInstance(j.Name(), params)
		if err := l.jobRepository.SaveJobInstance(ctx, instance); err != nil {
			return nil, nil, fmt.Errorf("failed to persist job instance: %w", err)
		}
		return instance, nil, nil
	}

	latest, err := l.jobRepository.FindLatestJobExecution(ctx, instance.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return instance, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to look up latest job execution: %w", err)
	}

	if latest.IsRunning() {
		return nil, nil, fmt.Errorf("job '%s' instance %s: %w", j.Name(), instance.ID, ErrJobAlreadyRunning)
	}
	if latest.Status == model.BatchStatusCompleted {
		return nil, nil, fmt.Errorf("job '%s' instance %s already completed: %w", j.Name(), instance.ID, ErrIncompatibleRestart)
	}
	if latest.Status == model.BatchStatusAbandoned {
		return nil, nil, fmt.Errorf("job '%s' instance %s was abandoned: %w", j.Name(), instance.ID, ErrIncompatibleRestart)
	}
	if !j.Restartable() {
		return nil, nil, fmt.Errorf("job '%s' is not restartable: %w", j.Name(), ErrIncompatibleRestart)
	}

	logger.Infof("Job '%s' instance %s will restart from execution %s (status %s).", j.Name(), instance.ID, latest.ID, latest.Status)
	return instance, latest, nil
}
