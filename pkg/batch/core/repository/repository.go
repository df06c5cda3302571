// Package repository declares the persistence ports for batch metadata.
package repository

import (
	"context"
	"errors"

	"github.com/ripline/ripline/pkg/batch/core/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// JobRepository persists job instances, executions and step executions.
// Implementations must be safe for concurrent use.
type JobRepository interface {
	SaveJobInstance(ctx context.Context, instance *model.JobInstance) error
	FindJobInstanceByJobNameAndParameters(ctx context.Context, jobName string, params model.JobParameters) (*model.JobInstance, error)
	FindJobInstanceByID(ctx context.Context, id string) (*model.JobInstance, error)

	SaveJobExecution(ctx context.Context, execution *model.JobExecution) error
	UpdateJobExecution(ctx context.Context, execution *model.JobExecution) error
	FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error)
	FindLatestJobExecution(ctx context.Context, jobInstanceID string) (*model.JobExecution, error)
	FindJobExecutionsByInstance(ctx context.Context, instance *model.JobInstance) ([]*model.JobExecution, error)

	SaveStepExecution(ctx context.Context, execution *model.StepExecution) error
	UpdateStepExecution(ctx context.Context, execution *model.StepExecution) error
	FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error)

	Close() error
}

// CheckpointRepository persists per-step checkpoint state independently
// of the step execution row. Checkpoints are keyed by job instance and
// step name so that a restarted execution of the same instance finds the
// state its failed predecessor stored.
type CheckpointRepository interface {
	SaveCheckpoint(ctx context.Context, jobInstanceID, stepName string, ec model.ExecutionContext) error
	LoadCheckpoint(ctx context.Context, jobInstanceID, stepName string) (model.ExecutionContext, error)
	DeleteCheckpoint(ctx context.Context, jobInstanceID, stepName string) error
}
