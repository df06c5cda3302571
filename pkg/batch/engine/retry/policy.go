// Package retry decides whether a failed chunk operation is attempted again.
package retry

import (
	"time"

	"github.com/ripline/ripline/pkg/batch/support/exception"
)

// Policy controls retry behavior for chunk-level operations.
type Policy struct {
	// MaxAttempts is the total number of tries including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int `yaml:"max-attempts"`
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration `yaml:"initial-interval"`
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64 `yaml:"multiplier"`
	// RetryableErrors lists error type names that are retried even when
	// the error does not carry an explicit retryable flag.
	RetryableErrors []string `yaml:"retryable-errors"`
}

// DefaultPolicy retries nothing.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 1, InitialInterval: 100 * time.Millisecond, Multiplier: 2.0}
}

// ShouldRetry reports whether another attempt is allowed after err on the
// given 1-based attempt number.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}
	if attempt >= max {
		return false
	}
	return p.isRetryable(err)
}

func (p Policy) isRetryable(err error) bool {
	if be, ok := exception.AsBatchError(err); ok && be.IsRetryable() {
		return true
	}
	for _, name := range p.RetryableErrors {
		if exception.IsErrorOfType(err, name) {
			return true
		}
	}
	return false
}

// Backoff returns the delay before the given 1-based retry attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	if p.InitialInterval <= 0 {
		return 0
	}
	d := p.InitialInterval
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
	}
	return d
}
