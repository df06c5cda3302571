package logger

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Module wires the fx event logger through the framework logger.
var Module = fx.Options(
	fx.WithLogger(func() fxevent.Logger {
		return NewFxLoggerAdapter()
	}),
)
