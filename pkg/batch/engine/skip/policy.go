// Package skip decides whether a failing item may be dropped instead of
// failing the step.
package skip

import (
	"github.com/ripline/ripline/pkg/batch/support/exception"
)

// Policy controls item skipping for a step.
type Policy struct {
	// SkipLimit is the maximum number of items that may be skipped over
	// the lifetime of the step. Zero disables skipping.
	SkipLimit int `yaml:"skip-limit"`
	// SkippableErrors lists error type names that may be skipped even
	// when the error does not carry an explicit skippable flag.
	SkippableErrors []string `yaml:"skippable-errors"`
}

// DefaultPolicy skips nothing.
func DefaultPolicy() Policy {
	return Policy{}
}

// ShouldSkip reports whether err on a single item may be absorbed given
// skippedSoFar items already skipped in this step.
func (p Policy) ShouldSkip(err error, skippedSoFar int) bool {
	if err == nil {
		return false
	}
	if skippedSoFar >= p.SkipLimit {
		return false
	}
	return p.isSkippable(err)
}

func (p Policy) isSkippable(err error) bool {
	if be, ok := exception.AsBatchError(err); ok && be.IsSkippable() {
		return true
	}
	for _, name := range p.SkippableErrors {
		if exception.IsErrorOfType(err, name) {
			return true
		}
	}
	return false
}
