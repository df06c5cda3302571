// Package chunk implements the chunk-oriented step: read items one at a
// time, process them, and write them in transactional batches.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/port"
	"github.com/ripline/ripline/pkg/batch/core/repository"
	"github.com/ripline/ripline/pkg/batch/engine/executor"
	"github.com/ripline/ripline/pkg/batch/metrics"
	"github.com/ripline/ripline/pkg/batch/support/logger"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// Step runs a reader, processor and writer over a stream of items,
// committing every ChunkSize items in one transaction. A single goroutine
// reads and builds chunks; with Concurrency above 1 the chunks are
// dispatched to a bounded worker pool for processing and writing, so the
// processor and writer must then be safe for concurrent use.
type Step[I, O any] struct {
	name           string
	reader         port.ItemReader[I]
	processor      port.ItemProcessor[I, O]
	writer         port.ItemWriter[O]
	txManager      tx.TransactionManager
	jobRepository  repository.JobRepository
	checkpointRepo repository.CheckpointRepository
	recorder       metrics.Recorder
	listeners      []port.StepListener
	cfg            Config
}

// Option configures a Step.
type Option[I, O any] func(*Step[I, O])

// WithListeners appends step lifecycle listeners.
func WithListeners[I, O any](ls ...port.StepListener) Option[I, O] {
	return func(s *Step[I, O]) { s.listeners = append(s.listeners, ls...) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder[I, O any](r metrics.Recorder) Option[I, O] {
	return func(s *Step[I, O]) { s.recorder = r }
}

// WithCheckpointRepository additionally persists the step's checkpoint
// after every commit, keyed by job instance and step name so restarted
// executions of the same instance can resume from it.
func WithCheckpointRepository[I, O any](cr repository.CheckpointRepository) Option[I, O] {
	return func(s *Step[I, O]) { s.checkpointRepo = cr }
}

// NewStep builds a chunk step.
func NewStep[I, O any](
	name string,
	reader port.ItemReader[I],
	processor port.ItemProcessor[I, O],
	writer port.ItemWriter[O],
	txManager tx.TransactionManager,
	jobRepository repository.JobRepository,
	cfg Config,
	opts ...Option[I, O],
) *Step[I, O] {
	s := &Step[I, O]{
		name:          name,
		reader:        reader,
		processor:     processor,
		writer:        writer,
		txManager:     txManager,
		jobRepository: jobRepository,
		recorder:      metrics.NewNoopRecorder(),
		cfg:           cfg.normalized(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *Step[I, O]) Name() string {
	return s.name
}

// Execute runs the step against the given step execution, resuming from
// its execution context when one is present.
func (s *Step[I, O]) Execute(ctx context.Context, stepExecution *model.StepExecution) error {
	stepExecution.MarkAsStarted()
	for _, l := range s.listeners {
		l.BeforeStep(ctx, stepExecution)
	}

	err := s.run(ctx, stepExecution)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			stepExecution.MarkAsStopped()
		} else {
			stepExecution.MarkAsFailed(err)
		}
	} else {
		stepExecution.MarkAsCompleted()
		if s.checkpointRepo != nil {
			if derr := s.checkpointRepo.DeleteCheckpoint(ctx, s.checkpointOwner(stepExecution), s.name); derr != nil {
				logger.Warnf("Step '%s': failed to delete checkpoint: %v", s.name, derr)
			}
		}
	}

	for _, l := range s.listeners {
		l.AfterStep(ctx, stepExecution)
	}
	return err
}

// chunkWork is one chunk as built by the reader goroutine. checkpoint is
// the reader state after the last item of the chunk.
type chunkWork[I any] struct {
	index      int
	items      []I
	checkpoint model.ExecutionContext
}

// runState serializes count and checkpoint updates across chunk workers.
type runState struct {
	mu      sync.Mutex
	tracker commitTracker
}

func (s *Step[I, O]) run(ctx context.Context, se *model.StepExecution) error {
	if s.checkpointRepo != nil {
		cp, err := s.checkpointRepo.LoadCheckpoint(ctx, s.checkpointOwner(se), s.name)
		if err == nil {
			se.ExecutionContext.Merge(cp)
		} else if !errors.Is(err, repository.ErrNotFound) {
			logger.Warnf("Step '%s': failed to load checkpoint: %v", s.name, err)
		}
	}

	if err := s.reader.Open(ctx, se.ExecutionContext); err != nil {
		return fmt.Errorf("step '%s': failed to open reader: %w", s.name, err)
	}
	defer func() {
		if cerr := s.reader.Close(ctx); cerr != nil {
			logger.Warnf("Step '%s': failed to close reader: %v", s.name, cerr)
		}
	}()

	if err := s.writer.Open(ctx, se.ExecutionContext); err != nil {
		return fmt.Errorf("step '%s': failed to open writer: %w", s.name, err)
	}
	defer func() {
		if cerr := s.writer.Close(ctx); cerr != nil {
			logger.Warnf("Step '%s': failed to close writer: %v", s.name, cerr)
		}
	}()

	state := &runState{tracker: newCommitTracker()}

	if s.cfg.Concurrency <= 1 {
		return s.runSequential(ctx, se, state)
	}
	return s.runPooled(ctx, se, state)
}

func (s *Step[I, O]) runSequential(ctx context.Context, se *model.StepExecution, state *runState) error {
	index := 0
	for {
		work, done, err := s.readChunk(ctx, se, state, index)
		if err != nil {
			return err
		}
		if len(work.items) > 0 {
			if err := s.handleChunk(ctx, se, state, work); err != nil {
				return err
			}
			index++
		}
		if done {
			return nil
		}
	}
}

func (s *Step[I, O]) runPooled(ctx context.Context, se *model.StepExecution, state *runState) error {
	pool := executor.NewPoolExecutor(s.cfg.Concurrency, s.cfg.QueueCapacity)

	var readErr error
	index := 0
	for {
		if pool.Err() != nil {
			break
		}
		work, done, err := s.readChunk(ctx, se, state, index)
		if err != nil {
			readErr = err
			break
		}
		if len(work.items) > 0 {
			w := work
			if err := pool.Submit(ctx, func() error {
				return s.handleChunk(ctx, se, state, w)
			}); err != nil {
				readErr = err
				break
			}
			index++
		}
		if done {
			break
		}
	}

	poolErr := pool.Wait()
	if readErr != nil {
		return readErr
	}
	return poolErr
}

// readChunk reads up to ChunkSize items. done reports input exhaustion.
// Only the reader goroutine calls this, so reader access is serialized.
func (s *Step[I, O]) readChunk(ctx context.Context, se *model.StepExecution, state *runState, index int) (chunkWork[I], bool, error) {
	work := chunkWork[I]{index: index, items: make([]I, 0, s.cfg.ChunkSize)}
	for len(work.items) < s.cfg.ChunkSize {
		select {
		case <-ctx.Done():
			return work, false, ctx.Err()
		default:
		}

		item, err := s.reader.Read(ctx)
		if err != nil {
			if errors.Is(err, port.ErrNoMoreItems) {
				work.checkpoint = s.reader.Checkpoint()
				return work, true, nil
			}
			state.mu.Lock()
			skippable := s.cfg.Skip.ShouldSkip(err, se.TotalSkipCount())
			if skippable {
				se.SkipReadCount++
			}
			state.mu.Unlock()
			if skippable {
				s.recorder.ItemSkipped(s.jobName(se), s.name, "read")
				logger.Warnf("Step '%s': skipped unreadable item: %v", s.name, err)
				continue
			}
			return work, false, fmt.Errorf("step '%s': read failed: %w", s.name, err)
		}

		state.mu.Lock()
		se.ReadCount++
		state.mu.Unlock()
		work.items = append(work.items, item)
	}
	work.checkpoint = s.reader.Checkpoint()
	return work, false, nil
}

// handleChunk processes and writes one chunk, then commits and folds the
// chunk's counts into the step execution.
func (s *Step[I, O]) handleChunk(ctx context.Context, se *model.StepExecution, state *runState, work chunkWork[I]) error {
	out, filtered, skippedProcess, err := s.processChunk(ctx, se, state, work.items)
	if err != nil {
		return err
	}

	written, commits, err := s.writeWithRetry(ctx, se, state, out)
	if err != nil {
		return err
	}

	state.mu.Lock()
	se.WriteCount += written
	se.CommitCount += commits
	se.FilterCount += filtered
	se.SkipProcessCount += skippedProcess
	if cp, ok := state.tracker.commit(work.index, work.checkpoint); ok {
		se.ExecutionContext.Merge(cp)
		if s.checkpointRepo != nil {
			if err := s.checkpointRepo.SaveCheckpoint(ctx, s.checkpointOwner(se), s.name, se.ExecutionContext); err != nil {
				logger.Warnf("Step '%s': failed to save checkpoint: %v", s.name, err)
			}
		}
	}
	updateErr := s.jobRepository.UpdateStepExecution(ctx, se)
	state.mu.Unlock()

	s.recorder.ChunkCommitted(s.jobName(se), s.name, written)
	if updateErr != nil {
		return fmt.Errorf("step '%s': failed to persist step execution after commit: %w", s.name, updateErr)
	}
	return nil
}

// processChunk runs the processor over the chunk's items, applying the
// skip policy per item and dropping filtered items.
func (s *Step[I, O]) processChunk(ctx context.Context, se *model.StepExecution, state *runState, items []I) ([]O, int, int, error) {
	out := make([]O, 0, len(items))
	filtered := 0
	skipped := 0
	for _, item := range items {
		result, keep, err := s.processor.Process(ctx, item)
		if err != nil {
			state.mu.Lock()
			skippable := s.cfg.Skip.ShouldSkip(err, se.TotalSkipCount()+skipped)
			state.mu.Unlock()
			if skippable {
				skipped++
				s.recorder.ItemSkipped(s.jobName(se), s.name, "process")
				logger.Warnf("Step '%s': skipped unprocessable item: %v", s.name, err)
				continue
			}
			return nil, 0, 0, fmt.Errorf("step '%s': process failed: %w", s.name, err)
		}
		if !keep {
			filtered++
			continue
		}
		out = append(out, result)
	}
	return out, filtered, skipped, nil
}

// writeWithRetry writes the chunk in one transaction, retrying transient
// failures per the retry policy. When the whole chunk fails with a
// skippable error, it falls back to writing items one at a time so the
// poisoned items can be skipped individually. It returns the number of
// items written and transactions committed.
func (s *Step[I, O]) writeWithRetry(ctx context.Context, se *model.StepExecution, state *runState, items []O) (int, int, error) {
	if len(items) == 0 {
		return 0, 0, nil
	}

	attempt := 1
	for {
		err := s.writeOnce(ctx, items)
		if err == nil {
			return len(items), 1, nil
		}

		state.mu.Lock()
		se.RollbackCount++
		state.mu.Unlock()
		s.recorder.ChunkRolledBack(s.jobName(se), s.name)

		if s.cfg.Retry.ShouldRetry(err, attempt) {
			backoff := s.cfg.Retry.Backoff(attempt)
			logger.Warnf("Step '%s': chunk write failed (attempt %d), retrying in %s: %v", s.name, attempt, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, 0, ctx.Err()
			}
			attempt++
			continue
		}

		state.mu.Lock()
		scannable := s.cfg.Skip.ShouldSkip(err, se.TotalSkipCount())
		state.mu.Unlock()
		if scannable {
			return s.scanChunk(ctx, se, state, items)
		}
		return 0, 0, fmt.Errorf("step '%s': chunk write failed: %w", s.name, err)
	}
}

// scanChunk writes items one per transaction, skipping those that fail
// with a skippable error.
func (s *Step[I, O]) scanChunk(ctx context.Context, se *model.StepExecution, state *runState, items []O) (int, int, error) {
	written := 0
	commits := 0
	for _, item := range items {
		err := s.writeOnce(ctx, []O{item})
		if err == nil {
			written++
			commits++
			continue
		}

		state.mu.Lock()
		se.RollbackCount++
		skippable := s.cfg.Skip.ShouldSkip(err, se.TotalSkipCount())
		if skippable {
			se.SkipWriteCount++
		}
		state.mu.Unlock()
		s.recorder.ChunkRolledBack(s.jobName(se), s.name)

		if !skippable {
			return written, commits, fmt.Errorf("step '%s': write failed: %w", s.name, err)
		}
		s.recorder.ItemSkipped(s.jobName(se), s.name, "write")
		logger.Warnf("Step '%s': skipped unwritable item: %v", s.name, err)
	}
	return written, commits, nil
}

// writeOnce writes items inside a single transaction.
func (s *Step[I, O]) writeOnce(ctx context.Context, items []O) error {
	txn, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.writer.Write(ctx, txn, items); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			logger.Warnf("Step '%s': rollback failed: %v", s.name, rbErr)
		}
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Step[I, O]) jobName(se *model.StepExecution) string {
	if se.JobExecution != nil {
		return se.JobExecution.JobName
	}
	return ""
}

// checkpointOwner returns the job instance the step's checkpoint is
// keyed by. Execution IDs change across restarts; the instance ID does
// not, so the restarted attempt finds its predecessor's checkpoint.
func (s *Step[I, O]) checkpointOwner(se *model.StepExecution) string {
	if se.JobExecution != nil {
		return se.JobExecution.JobInstanceID
	}
	return se.JobExecutionID
}

// commitTracker advances the durable checkpoint to the highest chunk
// index with no uncommitted predecessor, so unordered commits across
// workers never publish a checkpoint past an unwritten chunk.
type commitTracker struct {
	next    int
	pending map[int]model.ExecutionContext
}

func newCommitTracker() commitTracker {
	return commitTracker{pending: make(map[int]model.ExecutionContext)}
}

// commit records chunk index as committed and returns the newest
// checkpoint that is safe to publish, if it advanced.
func (t *commitTracker) commit(index int, cp model.ExecutionContext) (model.ExecutionContext, bool) {
	t.pending[index] = cp
	var latest model.ExecutionContext
	advanced := false
	for {
		next, ok := t.pending[t.next]
		if !ok {
			break
		}
		delete(t.pending, t.next)
		latest = next
		advanced = true
		t.next++
	}
	if !advanced || latest == nil {
		return nil, false
	}
	return latest, true
}
