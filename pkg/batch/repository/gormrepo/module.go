package gormrepo

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ripline/ripline/pkg/batch/config"
	"github.com/ripline/ripline/pkg/batch/core/repository"
)

// Module provides the gorm-backed repositories and runs schema
// migrations at construction time.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			func(db *gorm.DB, cfg *config.Config) (*JobRepository, error) {
				if err := Migrate(db, cfg.Database.Driver); err != nil {
					return nil, err
				}
				return NewJobRepository(db), nil
			},
			fx.As(new(repository.JobRepository)),
			fx.As(new(repository.CheckpointRepository)),
		),
	),
)
