// Package port declares the pluggable contracts a job wires together:
// item readers, processors, writers, steps and lifecycle listeners.
package port

import (
	"context"
	"errors"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// ErrNoMoreItems signals the reader has exhausted its input.
var ErrNoMoreItems = errors.New("no more items")

// ItemReader produces items one at a time. Read returns ErrNoMoreItems
// once the input is exhausted. Open receives the checkpoint context of a
// previous attempt so the reader can resume mid-input.
type ItemReader[O any] interface {
	Open(ctx context.Context, ec model.ExecutionContext) error
	Read(ctx context.Context) (O, error)
	Close(ctx context.Context) error
	// Checkpoint returns the state needed to resume reading after the
	// current position.
	Checkpoint() model.ExecutionContext
}

// ItemProcessor transforms a read item into a written item. Returning
// (zero, nil, false) filters the item out of the chunk.
type ItemProcessor[I, O any] interface {
	Process(ctx context.Context, item I) (O, bool, error)
}

// ItemWriter persists a chunk of items inside the supplied transaction.
type ItemWriter[I any] interface {
	Open(ctx context.Context, ec model.ExecutionContext) error
	Write(ctx context.Context, txn tx.Tx, items []I) error
	Close(ctx context.Context) error
}

// Step executes one phase of a job against the given step execution.
type Step interface {
	Name() string
	Execute(ctx context.Context, stepExecution *model.StepExecution) error
}

// JobListener observes the start and end of a job execution.
type JobListener interface {
	BeforeJob(ctx context.Context, execution *model.JobExecution)
	AfterJob(ctx context.Context, execution *model.JobExecution)
}

// StepListener observes the start and end of a step execution.
type StepListener interface {
	BeforeStep(ctx context.Context, execution *model.StepExecution)
	AfterStep(ctx context.Context, execution *model.StepExecution)
}

// JobParametersIncrementer derives the next parameter set from the
// previous one, letting repeated launches create fresh job instances.
type JobParametersIncrementer interface {
	Next(params model.JobParameters) model.JobParameters
}
