package incrementer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripline/ripline/pkg/batch/core/model"
)

func TestRunIDProducesDistinctParameters(t *testing.T) {
	inc := NewRunID()
	first := inc.Next(model.NewJobParameters())
	second := inc.Next(model.NewJobParameters())

	assert.NotEqual(t, first.Hash(), second.Hash())

	v, ok := first.Get("run.id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestRunIDPreservesExistingParameters(t *testing.T) {
	inc := NewRunID()
	p := model.NewJobParameters()
	p.Put("file", "a.csv")

	next := inc.Next(p)
	assert.Equal(t, "a.csv", next.GetString("file"))
	_, ok := p.Get("run.id")
	assert.False(t, ok)
}

func TestTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inc := &Timestamp{Now: func() time.Time { return fixed }}

	next := inc.Next(model.NewJobParameters())
	v, ok := next.Get("timestamp")
	require.True(t, ok)
	assert.Equal(t, fixed.UnixNano(), v)
}

func TestTimestampProducesDistinctParameters(t *testing.T) {
	inc := NewTimestamp()
	first := inc.Next(model.NewJobParameters())
	second := inc.Next(model.NewJobParameters())
	assert.NotEqual(t, first.Hash(), second.Hash())
}
