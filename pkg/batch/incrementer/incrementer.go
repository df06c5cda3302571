// Package incrementer provides standard job parameter incrementers.
package incrementer

import (
	"sync/atomic"
	"time"

	"github.com/ripline/ripline/pkg/batch/core/model"
)

// RunID adds a monotonically increasing run.id parameter so repeated
// launches create distinct job instances.
type RunID struct {
	counter atomic.Int64
}

// NewRunID returns a RunID incrementer starting at 1.
func NewRunID() *RunID {
	return &RunID{}
}

// Next returns params with run.id set to the next value.
func (r *RunID) Next(params model.JobParameters) model.JobParameters {
	next := params.Copy()
	next.Put("run.id", r.counter.Add(1))
	return next
}

// Timestamp adds the current time as a timestamp parameter, nanosecond
// precision, so each launch identifies a fresh job instance.
type Timestamp struct {
	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewTimestamp returns a Timestamp incrementer on the wall clock.
func NewTimestamp() *Timestamp {
	return &Timestamp{Now: time.Now}
}

// Next returns params with timestamp set.
func (t *Timestamp) Next(params model.JobParameters) model.JobParameters {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	next := params.Copy()
	next.Put("timestamp", now().UnixNano())
	return next
}
