package runner

import "go.uber.org/fx"

// Module provides the standard job runner.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewSimpleJobRunner,
			fx.As(new(JobRunner)),
		),
	),
)
