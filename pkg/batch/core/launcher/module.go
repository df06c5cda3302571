package launcher

import "go.uber.org/fx"

// Module provides the standard job launcher.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewSimpleJobLauncher,
			fx.As(new(JobLauncher)),
		),
	),
)
