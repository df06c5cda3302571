package launcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corejob "github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/port"
	"github.com/ripline/ripline/pkg/batch/core/registry"
	"github.com/ripline/ripline/pkg/batch/core/runner"
	"github.com/ripline/ripline/pkg/batch/incrementer"
	"github.com/ripline/ripline/pkg/batch/repository/memory"
)

type fakeStep struct {
	name  string
	calls int
	err   error
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, se *model.StepExecution) error {
	s.calls++
	se.MarkAsStarted()
	if s.err != nil {
		se.MarkAsFailed(s.err)
		return s.err
	}
	se.MarkAsCompleted()
	return nil
}

func newLauncherForTest(t *testing.T) (*SimpleJobLauncher, *registry.JobRegistry, *memory.JobRepository) {
	t.Helper()
	reg := registry.NewJobRegistry()
	repo := memory.NewJobRepository()
	r := runner.NewSimpleJobRunner(repo, nil)
	return NewSimpleJobLauncher(reg, repo, r), reg, repo
}

func registerJob(t *testing.T, reg *registry.JobRegistry, name string, steps []port.Step, opts ...corejob.Option) {
	t.Helper()
	require.NoError(t, reg.Register(name, func() (corejob.Job, error) {
		return corejob.NewSimpleJob(name, steps, opts...), nil
	}))
}

func params(kv ...interface{}) model.JobParameters {
	p := model.NewJobParameters()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Put(kv[i].(string), kv[i+1])
	}
	return p
}

func TestLauncherRunsJobToCompletion(t *testing.T) {
	l, reg, repo := newLauncherForTest(t)
	step1 := &fakeStep{name: "stepOne"}
	step2 := &fakeStep{name: "stepTwo"}
	registerJob(t, reg, "twoSteps", []port.Step{step1, step2})

	execution, err := l.Launch(context.Background(), "twoSteps", params("file", "a.csv"))
	require.NoError(t, err)

	assert.Equal(t, model.BatchStatusCompleted, execution.Status)
	assert.Equal(t, 1, step1.calls)
	assert.Equal(t, 1, step2.calls)

	stored, err := repo.FindJobExecutionByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)
	require.Len(t, stored.StepExecutions, 2)
}

func TestLauncherRejectsUnknownJob(t *testing.T) {
	l, _, _ := newLauncherForTest(t)
	_, err := l.Launch(context.Background(), "nope", model.NewJobParameters())
	assert.Error(t, err)
}

func TestLauncherRejectsRunningExecution(t *testing.T) {
	l, reg, repo := newLauncherForTest(t)
	registerJob(t, reg, "slowJob", []port.Step{&fakeStep{name: "stepOne"}})

	p := params("file", "a.csv")
	instance := model.NewJobInstance("slowJob", p)
	require.NoError(t, repo.SaveJobInstance(context.Background(), instance))
	running := model.NewJobExecution(instance, p)
	running.MarkAsStarted()
	require.NoError(t, repo.SaveJobExecution(context.Background(), running))

	_, err := l.Launch(context.Background(), "slowJob", p)
	assert.ErrorIs(t, err, ErrJobAlreadyRunning)
}

func TestLauncherRejectsCompletedInstance(t *testing.T) {
	l, reg, _ := newLauncherForTest(t)
	registerJob(t, reg, "onceJob", []port.Step{&fakeStep{name: "stepOne"}})

	p := params("file", "a.csv")
	_, err := l.Launch(context.Background(), "onceJob", p)
	require.NoError(t, err)

	_, err = l.Launch(context.Background(), "onceJob", p)
	assert.ErrorIs(t, err, ErrIncompatibleRestart)
}

func TestLauncherRestartSkipsCompletedSteps(t *testing.T) {
	l, reg, _ := newLauncherForTest(t)
	step1 := &fakeStep{name: "stepOne"}
	step2 := &fakeStep{name: "stepTwo", err: errors.New("boom")}
	registerJob(t, reg, "flakyJob", []port.Step{step1, step2})

	p := params("file", "a.csv")
	execution, err := l.Launch(context.Background(), "flakyJob", p)
	require.Error(t, err)
	assert.Equal(t, model.BatchStatusFailed, execution.Status)

	step2.err = nil
	execution, err = l.Launch(context.Background(), "flakyJob", p)
	require.NoError(t, err)

	assert.Equal(t, model.BatchStatusCompleted, execution.Status)
	assert.Equal(t, 1, step1.calls)
	assert.Equal(t, 2, step2.calls)
}

func TestLauncherRejectsRestartOfNonRestartableJob(t *testing.T) {
	l, reg, _ := newLauncherForTest(t)
	step := &fakeStep{name: "stepOne", err: errors.New("boom")}
	registerJob(t, reg, "fragileJob", []port.Step{step}, corejob.NotRestartable())

	p := params("file", "a.csv")
	_, err := l.Launch(context.Background(), "fragileJob", p)
	require.Error(t, err)

	step.err = nil
	_, err = l.Launch(context.Background(), "fragileJob", p)
	assert.ErrorIs(t, err, ErrIncompatibleRestart)
}

func TestLauncherAppliesIncrementerForEmptyParams(t *testing.T) {
	l, reg, _ := newLauncherForTest(t)
	step := &fakeStep{name: "stepOne"}
	registerJob(t, reg, "repeatJob", []port.Step{step},
		corejob.WithIncrementer(incrementer.NewRunID()))

	first, err := l.Launch(context.Background(), "repeatJob", model.NewJobParameters())
	require.NoError(t, err)
	second, err := l.Launch(context.Background(), "repeatJob", model.NewJobParameters())
	require.NoError(t, err)

	assert.NotEqual(t, first.JobInstanceID, second.JobInstanceID)
	assert.Equal(t, 2, step.calls)
}
