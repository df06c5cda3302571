package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecutorRunsAllTasks(t *testing.T) {
	pool := NewPoolExecutor(4, 2)
	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() error {
			ran.Add(1)
			return nil
		}))
	}
	require.NoError(t, pool.Wait())
	assert.Equal(t, int64(50), ran.Load())
}

func TestPoolExecutorAggregatesErrors(t *testing.T) {
	pool := NewPoolExecutor(2, 2)
	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		fail := i%2 == 0
		require.NoError(t, pool.Submit(context.Background(), func() error {
			if fail {
				return boom
			}
			return nil
		}))
	}
	err := pool.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPoolExecutorRejectsAfterWait(t *testing.T) {
	pool := NewPoolExecutor(1, 1)
	require.NoError(t, pool.Wait())
	err := pool.Submit(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrExecutorClosed)
}

func TestPoolExecutorSubmitHonorsContext(t *testing.T) {
	pool := NewPoolExecutor(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})
	// occupy the worker, then fill the queue
	require.NoError(t, pool.Submit(context.Background(), func() error {
		close(started)
		<-block
		return nil
	}))
	<-started
	require.NoError(t, pool.Submit(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Submit(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
	require.NoError(t, pool.Wait())
}
