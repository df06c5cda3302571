// Package writer provides item writers for the import jobs.
package writer

import (
	"context"

	"github.com/ripline/ripline/internal/entity"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// CustomerWriter upserts customers into the customers table. Each chunk
// lands in the transaction the step hands in, so a failed chunk leaves
// no partial rows behind.
type CustomerWriter struct{}

// NewCustomerWriter returns a writer over the customers table.
func NewCustomerWriter() *CustomerWriter {
	return &CustomerWriter{}
}

func (w *CustomerWriter) Open(ctx context.Context, ec model.ExecutionContext) error {
	return nil
}

// Write upserts the chunk by primary key.
func (w *CustomerWriter) Write(ctx context.Context, txn tx.Tx, items []entity.Customer) error {
	if len(items) == 0 {
		return nil
	}
	return txn.ExecuteUpsert(ctx, entity.Customer{}.TableName(), items)
}

func (w *CustomerWriter) Close(ctx context.Context) error {
	return nil
}
