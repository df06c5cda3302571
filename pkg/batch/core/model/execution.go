package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique identifier for instances and executions.
func NewID() string {
	return uuid.NewString()
}

// FailureList collects error messages recorded against an execution.
// Errors are flattened to strings so the list survives persistence.
type FailureList []string

// Append records an error. Nil errors are ignored.
func (f *FailureList) Append(err error) {
	if err == nil {
		return
	}
	*f = append(*f, err.Error())
}

// Value implements driver.Valuer.
func (f FailureList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal failure list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *FailureList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for failure list: %T", value)
	}
	if len(b) == 0 {
		*f = nil
		return nil
	}
	return json.Unmarshal(b, f)
}

// JobInstance is the logical identity of a job: a job name plus a distinct
// set of parameters. Re-launching with equal parameters reuses the instance.
type JobInstance struct {
	ID         string        `json:"id"`
	JobName    string        `json:"job_name"`
	Parameters JobParameters `json:"parameters"`
	CreateTime time.Time     `json:"create_time"`
	Version    int           `json:"version"`
}

// NewJobInstance creates a JobInstance for the given name and parameters.
func NewJobInstance(jobName string, params JobParameters) *JobInstance {
	return &JobInstance{
		ID:         NewID(),
		JobName:    jobName,
		Parameters: params,
		CreateTime: time.Now(),
	}
}

// JobExecution is one attempt at running a JobInstance.
type JobExecution struct {
	ID               string           `json:"id"`
	JobInstanceID    string           `json:"job_instance_id"`
	JobName          string           `json:"job_name"`
	Parameters       JobParameters    `json:"parameters"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Status           JobStatus        `json:"status"`
	ExitStatus       ExitStatus       `json:"exit_status"`
	ExecutionContext ExecutionContext `json:"execution_context"`
	StepExecutions   []*StepExecution `json:"step_executions"`
	Failures         FailureList      `json:"failures"`
	CreateTime       time.Time        `json:"create_time"`
	LastUpdated      time.Time        `json:"last_updated"`
	Version          int              `json:"version"`
}

// NewJobExecution creates a new execution attempt in STARTING state.
func NewJobExecution(instance *JobInstance, params JobParameters) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:               NewID(),
		JobInstanceID:    instance.ID,
		JobName:          instance.JobName,
		Parameters:       params,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		ExecutionContext: NewExecutionContext(),
		CreateTime:       now,
		LastUpdated:      now,
	}
}

// isValidJobTransition guards the job execution state machine.
func isValidJobTransition(from, to JobStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case BatchStatusStarting:
		return to == BatchStatusStarted || to == BatchStatusFailed || to == BatchStatusStopped || to == BatchStatusAbandoned
	case BatchStatusStarted:
		return to == BatchStatusCompleted || to == BatchStatusFailed || to == BatchStatusStopping || to == BatchStatusStopped
	case BatchStatusStopping:
		return to == BatchStatusStopped || to == BatchStatusFailed
	case BatchStatusFailed, BatchStatusStopped:
		return to == BatchStatusAbandoned
	default:
		return false
	}
}

// TransitionTo moves the execution to the given status, rejecting
// transitions the state machine does not allow.
func (e *JobExecution) TransitionTo(status JobStatus) error {
	if !isValidJobTransition(e.Status, status) {
		return fmt.Errorf("invalid job status transition from %s to %s", e.Status, status)
	}
	e.Status = status
	e.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted records the start of the run.
func (e *JobExecution) MarkAsStarted() {
	now := time.Now()
	e.Status = BatchStatusStarted
	e.StartTime = now
	e.LastUpdated = now
}

// MarkAsCompleted records successful completion.
func (e *JobExecution) MarkAsCompleted() {
	now := time.Now()
	e.Status = BatchStatusCompleted
	e.ExitStatus = ExitStatusCompleted
	e.EndTime = now
	e.LastUpdated = now
}

// MarkAsFailed records failure, capturing the causing errors.
func (e *JobExecution) MarkAsFailed(errs ...error) {
	now := time.Now()
	e.Status = BatchStatusFailed
	e.ExitStatus = ExitStatusFailed
	e.EndTime = now
	e.LastUpdated = now
	for _, err := range errs {
		e.Failures.Append(err)
	}
}

// MarkAsStopped records a stop requested by an operator or shutdown.
func (e *JobExecution) MarkAsStopped() {
	now := time.Now()
	e.Status = BatchStatusStopped
	e.ExitStatus = ExitStatusStopped
	e.EndTime = now
	e.LastUpdated = now
}

// AddFailureException appends an error without changing status.
func (e *JobExecution) AddFailureException(err error) {
	e.Failures.Append(err)
	e.LastUpdated = time.Now()
}

// IsRunning reports whether the execution occupies a non-terminal state.
func (e *JobExecution) IsRunning() bool {
	return !e.Status.IsFinished()
}

// FindStepExecution returns the step execution with the given step name,
// or nil if the step has not run in this attempt.
func (e *JobExecution) FindStepExecution(stepName string) *StepExecution {
	for _, se := range e.StepExecutions {
		if se.StepName == stepName {
			return se
		}
	}
	return nil
}

// StepExecution tracks one step's run within a job execution attempt.
type StepExecution struct {
	ID               string           `json:"id"`
	StepName         string           `json:"step_name"`
	JobExecutionID   string           `json:"job_execution_id"`
	JobExecution     *JobExecution    `json:"-"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Status           JobStatus        `json:"status"`
	ExitStatus       ExitStatus       `json:"exit_status"`
	ReadCount        int              `json:"read_count"`
	WriteCount       int              `json:"write_count"`
	CommitCount      int              `json:"commit_count"`
	RollbackCount    int              `json:"rollback_count"`
	FilterCount      int              `json:"filter_count"`
	SkipReadCount    int              `json:"skip_read_count"`
	SkipProcessCount int              `json:"skip_process_count"`
	SkipWriteCount   int              `json:"skip_write_count"`
	ExecutionContext ExecutionContext `json:"execution_context"`
	Failures         FailureList      `json:"failures"`
	LastUpdated      time.Time        `json:"last_updated"`
	Version          int              `json:"version"`
}

// NewStepExecution creates a step execution in STARTING state, attached to
// the given job execution.
func NewStepExecution(stepName string, jobExecution *JobExecution) *StepExecution {
	now := time.Now()
	se := &StepExecution{
		ID:               NewID(),
		StepName:         stepName,
		JobExecutionID:   jobExecution.ID,
		JobExecution:     jobExecution,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
	jobExecution.StepExecutions = append(jobExecution.StepExecutions, se)
	return se
}

// isValidStepTransition guards the step execution state machine.
func isValidStepTransition(from, to JobStatus) bool {
	return isValidJobTransition(from, to)
}

// TransitionTo moves the step to the given status, validating the edge.
func (s *StepExecution) TransitionTo(status JobStatus) error {
	if !isValidStepTransition(s.Status, status) {
		return fmt.Errorf("invalid step status transition from %s to %s", s.Status, status)
	}
	s.Status = status
	s.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted records the start of the step.
func (s *StepExecution) MarkAsStarted() {
	now := time.Now()
	s.Status = BatchStatusStarted
	s.StartTime = now
	s.LastUpdated = now
}

// MarkAsCompleted records successful completion of the step.
func (s *StepExecution) MarkAsCompleted() {
	now := time.Now()
	s.Status = BatchStatusCompleted
	s.ExitStatus = ExitStatusCompleted
	s.EndTime = now
	s.LastUpdated = now
}

// MarkAsFailed records step failure with the causing errors.
func (s *StepExecution) MarkAsFailed(errs ...error) {
	now := time.Now()
	s.Status = BatchStatusFailed
	s.ExitStatus = ExitStatusFailed
	s.EndTime = now
	s.LastUpdated = now
	for _, err := range errs {
		s.Failures.Append(err)
	}
}

// MarkAsStopped records a stop of the step.
func (s *StepExecution) MarkAsStopped() {
	now := time.Now()
	s.Status = BatchStatusStopped
	s.ExitStatus = ExitStatusStopped
	s.EndTime = now
	s.LastUpdated = now
}

// AddFailureException appends an error without changing status.
func (s *StepExecution) AddFailureException(err error) {
	s.Failures.Append(err)
	s.LastUpdated = time.Now()
}

// TotalSkipCount returns the sum of read, process and write skips.
func (s *StepExecution) TotalSkipCount() int {
	return s.SkipReadCount + s.SkipProcessCount + s.SkipWriteCount
}

// CopyForRestart builds a fresh StepExecution for a restart attempt,
// carrying over the checkpoint context and cumulative counts of the
// previous run.
func (s *StepExecution) CopyForRestart(jobExecution *JobExecution) *StepExecution {
	restarted := NewStepExecution(s.StepName, jobExecution)
	restarted.ExecutionContext = s.ExecutionContext.Copy()
	restarted.ReadCount = s.ReadCount
	restarted.WriteCount = s.WriteCount
	restarted.CommitCount = s.CommitCount
	restarted.RollbackCount = s.RollbackCount
	restarted.FilterCount = s.FilterCount
	restarted.SkipReadCount = s.SkipReadCount
	restarted.SkipProcessCount = s.SkipProcessCount
	restarted.SkipWriteCount = s.SkipWriteCount
	return restarted
}
