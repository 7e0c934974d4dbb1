package migrations

import (
	"gorm.io/gorm"

	"triage/internal/infrastructure/persistence/models"
)

// MigrateTriageTables creates or updates every table of one partition. db
// must already be bound to the partition.
func MigrateTriageTables(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
