// Command importsvc runs the customer import service: an HTTP endpoint
// that triggers a chunked CSV-to-database import job.
package main

import (
	_ "embed"

	"go.uber.org/fx"

	"github.com/ripline/ripline/internal/job"
	"github.com/ripline/ripline/internal/server"
	"github.com/ripline/ripline/pkg/batch/adapter/gormdb"
	"github.com/ripline/ripline/pkg/batch/config"
	"github.com/ripline/ripline/pkg/batch/core/launcher"
	"github.com/ripline/ripline/pkg/batch/core/registry"
	"github.com/ripline/ripline/pkg/batch/core/runner"
	"github.com/ripline/ripline/pkg/batch/metrics"
	"github.com/ripline/ripline/pkg/batch/repository/gormrepo"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

//go:embed resources/application.yaml
var defaultConfig []byte

func main() {
	cfg, err := config.Load(defaultConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Logging.Level)

	app := fx.New(
		fx.Supply(cfg),
		logger.Module,
		metrics.Module,
		gormdb.Module,
		gormrepo.Module,
		registry.Module,
		runner.Module,
		launcher.Module,
		job.Module,
		server.Module,
	)
	app.Run()
}
