package tx

import "context"

// NoopTx satisfies Tx without touching any store. Used when the job's
// writers manage their own durability, or in tests.
type NoopTx struct{}

func (NoopTx) ExecuteUpsert(ctx context.Context, table string, records interface{}) error {
	return nil
}

func (NoopTx) ExecuteInsert(ctx context.Context, table string, records interface{}) error {
	return nil
}

func (NoopTx) Commit() error   { return nil }
func (NoopTx) Rollback() error { return nil }

// NoopTransactionManager hands out NoopTx transactions.
type NoopTransactionManager struct{}

// NewNoopTransactionManager returns a manager whose transactions do nothing.
func NewNoopTransactionManager() *NoopTransactionManager {
	return &NoopTransactionManager{}
}

func (m *NoopTransactionManager) Begin(ctx context.Context) (Tx, error) {
	return NoopTx{}, nil
}
