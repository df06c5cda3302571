package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripline/ripline/internal/entity"
	"github.com/ripline/ripline/pkg/batch/config"
	"github.com/ripline/ripline/pkg/batch/core/launcher"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/registry"
	"github.com/ripline/ripline/pkg/batch/core/runner"
	"github.com/ripline/ripline/pkg/batch/repository/memory"
	"github.com/ripline/ripline/pkg/batch/support/exception"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// captureTxManager commits chunks into memory so tests can inspect what
// landed. failAttempts injects one-shot commit failures by attempt number.
type captureTxManager struct {
	mu           sync.Mutex
	customers    []entity.Customer
	commits      int
	rollbacks    int
	failAttempts map[int]bool
}

func (m *captureTxManager) Begin(ctx context.Context) (tx.Tx, error) {
	return &captureTx{m: m}, nil
}

func (m *captureTxManager) committedIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.customers))
	for _, c := range m.customers {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	return ids
}

type captureTx struct {
	m      *captureTxManager
	staged []entity.Customer
}

func (t *captureTx) ExecuteUpsert(ctx context.Context, table string, records interface{}) error {
	t.staged = append(t.staged, records.([]entity.Customer)...)
	return nil
}

func (t *captureTx) ExecuteInsert(ctx context.Context, table string, records interface{}) error {
	return t.ExecuteUpsert(ctx, table, records)
}

func (t *captureTx) Commit() error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	attempt := t.m.commits + t.m.rollbacks + 1
	if t.m.failAttempts[attempt] {
		delete(t.m.failAttempts, attempt)
		t.m.rollbacks++
		return exception.NewBatchError("tx", "commit failed", nil, false, false)
	}
	t.m.customers = append(t.m.customers, t.staged...)
	t.m.commits++
	return nil
}

func (t *captureTx) Rollback() error {
	return nil
}

func writeCustomersCSV(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("id,firstName,lastName,email,gender,contactNo,country,dob\n")
	require.NoError(t, err)
	for i := 1; i <= rows; i++ {
		_, err = fmt.Fprintf(f, "%d,First%d,Last%d,user%d@example.com,Other,070%04d,NL,1990-01-01\n", i, i, i, i, i)
		require.NoError(t, err)
	}
	return path
}

func newImportFixture(t *testing.T, inputFile string, txm *captureTxManager) launcher.JobLauncher {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Batch.ChunkSize = 10
	cfg.Batch.InputFile = inputFile

	reg := registry.NewJobRegistry()
	repo := memory.NewJobRepository()
	require.NoError(t, RegisterJobs(reg, cfg, txm, repo, repo, nil))
	return launcher.NewSimpleJobLauncher(reg, repo, runner.NewSimpleJobRunner(repo, nil))
}

func importParams() model.JobParameters {
	p := model.NewJobParameters()
	p.Put("source", "integration-test")
	return p
}

func TestImportJobEndToEnd(t *testing.T) {
	path := writeCustomersCSV(t, 25)
	txm := &captureTxManager{}
	l := newImportFixture(t, path, txm)

	execution, err := l.Launch(context.Background(), ImportCustomersJobName, importParams())
	require.NoError(t, err)

	assert.Equal(t, model.BatchStatusCompleted, execution.Status)
	require.Len(t, execution.StepExecutions, 1)
	se := execution.StepExecutions[0]
	assert.Equal(t, ImportStepName, se.StepName)
	assert.Equal(t, 25, se.ReadCount)
	assert.Equal(t, 25, se.WriteCount)
	assert.Equal(t, 3, se.CommitCount)
	assert.Equal(t, 0, se.RollbackCount)

	ids := txm.committedIDs()
	require.Len(t, ids, 25)
	assert.Equal(t, 1, ids[0])
	assert.Equal(t, 25, ids[24])
}

func TestImportJobRestartResumesWithoutDuplicates(t *testing.T) {
	path := writeCustomersCSV(t, 25)
	txm := &captureTxManager{failAttempts: map[int]bool{2: true}}
	l := newImportFixture(t, path, txm)

	p := importParams()
	execution, err := l.Launch(context.Background(), ImportCustomersJobName, p)
	require.Error(t, err)
	assert.Equal(t, model.BatchStatusFailed, execution.Status)
	assert.Len(t, txm.committedIDs(), 10)

	execution, err = l.Launch(context.Background(), ImportCustomersJobName, p)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, execution.Status)

	ids := txm.committedIDs()
	require.Len(t, ids, 25)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
}

func TestImportJobEmptyParamsCreateFreshInstances(t *testing.T) {
	path := writeCustomersCSV(t, 5)
	txm := &captureTxManager{}
	l := newImportFixture(t, path, txm)

	first, err := l.Launch(context.Background(), ImportCustomersJobName, model.NewJobParameters())
	require.NoError(t, err)
	second, err := l.Launch(context.Background(), ImportCustomersJobName, model.NewJobParameters())
	require.NoError(t, err)

	assert.NotEqual(t, first.JobInstanceID, second.JobInstanceID)
}
