// Package job assembles the customer import job and registers it.
package job

import (
	"github.com/ripline/ripline/internal/entity"
	"github.com/ripline/ripline/internal/processor"
	"github.com/ripline/ripline/internal/reader"
	"github.com/ripline/ripline/internal/writer"
	"github.com/ripline/ripline/pkg/batch/config"
	corejob "github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/core/port"
	"github.com/ripline/ripline/pkg/batch/core/registry"
	"github.com/ripline/ripline/pkg/batch/core/repository"
	"github.com/ripline/ripline/pkg/batch/engine/chunk"
	"github.com/ripline/ripline/pkg/batch/engine/skip"
	"github.com/ripline/ripline/pkg/batch/incrementer"
	"github.com/ripline/ripline/pkg/batch/listener"
	"github.com/ripline/ripline/pkg/batch/metrics"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// ImportCustomersJobName is the job launched by the HTTP trigger.
const ImportCustomersJobName = "importCustomers"

// ImportStepName is the job's single chunk step.
const ImportStepName = "importCustomersStep"

// RegisterJobs registers the import jobs with the registry. The factory
// builds fresh reader and writer instances per launch so concurrent and
// repeated runs never share file handles.
func RegisterJobs(
	reg *registry.JobRegistry,
	cfg *config.Config,
	txManager tx.TransactionManager,
	jobRepository repository.JobRepository,
	checkpointRepo repository.CheckpointRepository,
	recorder metrics.Recorder,
) error {
	inc := incrementer.NewTimestamp()

	stepOpts := []chunk.Option[entity.Customer, entity.Customer]{
		chunk.WithListeners[entity.Customer, entity.Customer](listener.NewLoggingStepListener()),
	}
	if recorder != nil {
		stepOpts = append(stepOpts, chunk.WithRecorder[entity.Customer, entity.Customer](recorder))
	}
	if checkpointRepo != nil {
		stepOpts = append(stepOpts, chunk.WithCheckpointRepository[entity.Customer, entity.Customer](checkpointRepo))
	}

	return reg.Register(ImportCustomersJobName, func() (corejob.Job, error) {
		step := chunk.NewStep[entity.Customer, entity.Customer](
			ImportStepName,
			reader.NewCustomerCSVReader(cfg.Batch.InputFile),
			processor.NewPassthrough[entity.Customer](),
			writer.NewCustomerWriter(),
			txManager,
			jobRepository,
			chunkConfig(cfg.Batch),
			stepOpts...,
		)
		return corejob.NewSimpleJob(
			ImportCustomersJobName,
			[]port.Step{step},
			corejob.WithIncrementer(inc),
			corejob.WithListeners(listener.NewLoggingJobListener()),
		), nil
	})
}

func chunkConfig(cfg config.BatchConfig) chunk.Config {
	c := chunk.DefaultConfig()
	if cfg.ChunkSize > 0 {
		c.ChunkSize = cfg.ChunkSize
	}
	if cfg.Concurrency > 0 {
		c.Concurrency = cfg.Concurrency
	}
	if cfg.QueueCapacity > 0 {
		c.QueueCapacity = cfg.QueueCapacity
	}
	if cfg.RetryMaxAttempts > 0 {
		c.Retry.MaxAttempts = cfg.RetryMaxAttempts
	}
	c.Skip = skip.Policy{SkipLimit: cfg.SkipLimit}
	return c
}
