package registry

import "go.uber.org/fx"

// Module provides a shared job registry.
var Module = fx.Options(
	fx.Provide(NewJobRegistry),
)
