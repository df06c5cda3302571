// Package gormdb adapts gorm to the engine's transaction and persistence
// ports.
package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ripline/ripline/pkg/batch/tx"
)

// Tx wraps a gorm transaction.
type Tx struct {
	db *gorm.DB
}

// ExecuteUpsert inserts records into table, updating all columns of rows
// whose primary key already exists.
func (t *Tx) ExecuteUpsert(ctx context.Context, table string, records interface{}) error {
	result := t.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(records)
	if result.Error != nil {
		return fmt.Errorf("upsert into '%s' failed: %w", table, result.Error)
	}
	return nil
}

// ExecuteInsert inserts records into table.
func (t *Tx) ExecuteInsert(ctx context.Context, table string, records interface{}) error {
	result := t.db.WithContext(ctx).Table(table).Create(records)
	if result.Error != nil {
		return fmt.Errorf("insert into '%s' failed: %w", table, result.Error)
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// Rollback rolls the transaction back.
func (t *Tx) Rollback() error {
	if err := t.db.Rollback().Error; err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// TransactionManager opens gorm transactions.
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager wraps the given gorm handle.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// Begin starts a transaction.
func (m *TransactionManager) Begin(ctx context.Context) (tx.Tx, error) {
	g := m.db.WithContext(ctx).Begin()
	if g.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", g.Error)
	}
	return &Tx{db: g}, nil
}
