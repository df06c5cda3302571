package gormdb

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ripline/ripline/pkg/batch/config"
	"github.com/ripline/ripline/pkg/batch/tx"
)

// Module opens the configured database and provides the gorm transaction
// manager over it.
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*gorm.DB, error) {
			return Open(cfg.Database)
		},
		fx.Annotate(
			NewTransactionManager,
			fx.As(new(tx.TransactionManager)),
		),
	),
)
