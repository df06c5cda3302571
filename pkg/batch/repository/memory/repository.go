// Package memory provides an in-memory JobRepository, suitable for tests
// and for jobs that do not need metadata to survive a restart of the
// process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/repository"
)

// JobRepository keeps all batch metadata in process memory.
type JobRepository struct {
	mu             sync.RWMutex
	instances      map[string]*model.JobInstance
	executions     map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
	checkpoints    map[string]model.ExecutionContext
}

// NewJobRepository returns an empty repository.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		instances:      make(map[string]*model.JobInstance),
		executions:     make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
		checkpoints:    make(map[string]model.ExecutionContext),
	}
}

func (r *JobRepository) SaveJobInstance(ctx context.Context, instance *model.JobInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *instance
	r.instances[instance.ID] = &cp
	return nil
}

func (r *JobRepository) FindJobInstanceByJobNameAndParameters(ctx context.Context, jobName string, params model.JobParameters) (*model.JobInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hash := params.Hash()
	for _, inst := range r.instances {
		if inst.JobName == jobName && inst.Parameters.Hash() == hash {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *JobRepository) FindJobInstanceByID(ctx context.Context, id string) (*model.JobInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inst
	return &cp, nil
}

func (r *JobRepository) SaveJobExecution(ctx context.Context, execution *model.JobExecution) error {
	return r.storeJobExecution(execution)
}

func (r *JobRepository) UpdateJobExecution(ctx context.Context, execution *model.JobExecution) error {
	return r.storeJobExecution(execution)
}

func (r *JobRepository) storeJobExecution(execution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	execution.Version++
	cp := *execution
	cp.ExecutionContext = execution.ExecutionContext.Copy()
	cp.StepExecutions = append([]*model.StepExecution(nil), execution.StepExecutions...)
	r.executions[execution.ID] = &cp
	return nil
}

func (r *JobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exec, ok := r.executions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.copyExecution(exec), nil
}

func (r *JobRepository) FindLatestJobExecution(ctx context.Context, jobInstanceID string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *model.JobExecution
	for _, exec := range r.executions {
		if exec.JobInstanceID != jobInstanceID {
			continue
		}
		if latest == nil || exec.CreateTime.After(latest.CreateTime) {
			latest = exec
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return r.copyExecution(latest), nil
}

func (r *JobRepository) FindJobExecutionsByInstance(ctx context.Context, instance *model.JobInstance) ([]*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.JobExecution
	for _, exec := range r.executions {
		if exec.JobInstanceID == instance.ID {
			out = append(out, r.copyExecution(exec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, nil
}

func (r *JobRepository) SaveStepExecution(ctx context.Context, execution *model.StepExecution) error {
	return r.storeStepExecution(execution)
}

func (r *JobRepository) UpdateStepExecution(ctx context.Context, execution *model.StepExecution) error {
	return r.storeStepExecution(execution)
}

func (r *JobRepository) storeStepExecution(execution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	execution.Version++
	cp := *execution
	cp.ExecutionContext = execution.ExecutionContext.Copy()
	r.stepExecutions[execution.ID] = &cp
	return nil
}

func (r *JobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	se, ok := r.stepExecutions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *se
	cp.ExecutionContext = se.ExecutionContext.Copy()
	return &cp, nil
}

func (r *JobRepository) Close() error {
	return nil
}

// copyExecution clones an execution together with its step executions,
// resolving each step to its latest stored state. Callers must hold at
// least the read lock.
func (r *JobRepository) copyExecution(exec *model.JobExecution) *model.JobExecution {
	cp := *exec
	cp.ExecutionContext = exec.ExecutionContext.Copy()
	cp.StepExecutions = make([]*model.StepExecution, 0, len(exec.StepExecutions))
	for _, se := range exec.StepExecutions {
		stored, ok := r.stepExecutions[se.ID]
		if !ok {
			stored = se
		}
		sc := *stored
		sc.ExecutionContext = stored.ExecutionContext.Copy()
		sc.JobExecution = &cp
		cp.StepExecutions = append(cp.StepExecutions, &sc)
	}
	return &cp
}

// SaveCheckpoint stores a checkpoint keyed by job instance and step name.
func (r *JobRepository) SaveCheckpoint(ctx context.Context, jobInstanceID, stepName string, ec model.ExecutionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints[jobInstanceID+"/"+stepName] = ec.Copy()
	return nil
}

// LoadCheckpoint loads a stored checkpoint, or ErrNotFound.
func (r *JobRepository) LoadCheckpoint(ctx context.Context, jobInstanceID, stepName string) (model.ExecutionContext, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ec, ok := r.checkpoints[jobInstanceID+"/"+stepName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ec.Copy(), nil
}

// DeleteCheckpoint removes a stored checkpoint.
func (r *JobRepository) DeleteCheckpoint(ctx context.Context, jobInstanceID, stepName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkpoints, jobInstanceID+"/"+stepName)
	return nil
}
