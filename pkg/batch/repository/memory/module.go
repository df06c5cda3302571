package memory

import (
	"go.uber.org/fx"

	"github.com/ripline/ripline/pkg/batch/core/repository"
)

// Module provides the in-memory repository implementations.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewJobRepository,
			fx.As(new(repository.JobRepository)),
			fx.As(new(repository.CheckpointRepository)),
		),
	),
)
