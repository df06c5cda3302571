package skip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ripline/ripline/pkg/batch/support/exception"
)

func TestDefaultPolicySkipsNothing(t *testing.T) {
	p := DefaultPolicy()
	err := exception.NewBatchError("reader", "bad row", nil, true, false)
	assert.False(t, p.ShouldSkip(err, 0))
}

func TestPolicySkipsFlaggedErrorsWithinLimit(t *testing.T) {
	p := Policy{SkipLimit: 2}
	err := exception.NewBatchError("reader", "bad row", nil, true, false)

	assert.True(t, p.ShouldSkip(err, 0))
	assert.True(t, p.ShouldSkip(err, 1))
	assert.False(t, p.ShouldSkip(err, 2))
}

func TestPolicyIgnoresNonSkippableErrors(t *testing.T) {
	p := Policy{SkipLimit: 10}
	assert.False(t, p.ShouldSkip(errors.New("fatal"), 0))
}

func TestPolicySkipsConfiguredErrorNames(t *testing.T) {
	p := Policy{SkipLimit: 1, SkippableErrors: []string{"ParseError"}}
	assert.True(t, p.ShouldSkip(errors.New("ParseError: field 3 is not a number"), 0))
}
