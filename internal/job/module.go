package job

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ripline/ripline/internal/entity"
)

// Module registers the import jobs and prepares the target table.
var Module = fx.Options(
	fx.Invoke(
		func(db *gorm.DB) error {
			return db.AutoMigrate(&entity.Customer{})
		},
		RegisterJobs,
	),
)
