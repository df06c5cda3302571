// Package job defines the Job abstraction: a named, ordered sequence of
// steps with optional restart and parameter-increment behavior.
package job

import (
	"github.com/ripline/ripline/pkg/batch/core/port"
)

// Job is a runnable batch job.
type Job interface {
	Name() string
	Steps() []port.Step
	// Incrementer returns the job's parameter incrementer, or nil.
	Incrementer() port.JobParametersIncrementer
	// Restartable reports whether failed executions may be restarted.
	Restartable() bool
	// Listeners returns the job-level lifecycle listeners.
	Listeners() []port.JobListener
}

// SimpleJob is the standard Job implementation.
type SimpleJob struct {
	name        string
	steps       []port.Step
	incrementer port.JobParametersIncrementer
	restartable bool
	listeners   []port.JobListener
}

// Option configures a SimpleJob.
type Option func(*SimpleJob)

// WithIncrementer sets the job's parameter incrementer.
func WithIncrementer(inc port.JobParametersIncrementer) Option {
	return func(j *SimpleJob) { j.incrementer = inc }
}

// WithListeners appends job lifecycle listeners.
func WithListeners(ls ...port.JobListener) Option {
	return func(j *SimpleJob) { j.listeners = append(j.listeners, ls...) }
}

// NotRestartable marks the job as non-restartable.
func NotRestartable() Option {
	return func(j *SimpleJob) { j.restartable = false }
}

// NewSimpleJob builds a job from its name and ordered steps.
func NewSimpleJob(name string, steps []port.Step, opts ...Option) *SimpleJob {
	j := &SimpleJob{
		name:        name,
		steps:       steps,
		restartable: true,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *SimpleJob) Name() string                               { return j.name }
func (j *SimpleJob) Steps() []port.Step                         { return j.steps }
func (j *SimpleJob) Incrementer() port.JobParametersIncrementer { return j.incrementer }
func (j *SimpleJob) Restartable() bool                          { return j.restartable }
func (j *SimpleJob) Listeners() []port.JobListener              { return j.listeners }
