// Package metrics records batch engine activity for observability.
package metrics

import "github.com/ripline/ripline/pkg/batch/core/model"

// Recorder receives engine lifecycle events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	JobStarted(jobName string)
	JobFinished(jobName string, execution *model.JobExecution)
	StepFinished(jobName, stepName string, execution *model.StepExecution)
	ChunkCommitted(jobName, stepName string, itemCount int)
	ChunkRolledBack(jobName, stepName string)
	ItemSkipped(jobName, stepName, phase string)
}
