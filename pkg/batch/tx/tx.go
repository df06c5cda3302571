// Package tx abstracts the transaction boundary a chunk commits under.
package tx

import "context"

// Tx is a handle on an open transaction. Writers receive it to stage
// their mutations; the step runner owns Commit and Rollback.
type Tx interface {
	// ExecuteUpsert inserts the given records, updating existing rows
	// that share a primary key.
	ExecuteUpsert(ctx context.Context, table string, records interface{}) error
	// ExecuteInsert inserts the given records.
	ExecuteInsert(ctx context.Context, table string, records interface{}) error
	Commit() error
	Rollback() error
}

// TransactionManager opens transactions for chunk commits.
type TransactionManager interface {
	Begin(ctx context.Context) (Tx, error)
}
