// Package migration prepares partition schemas: it creates them, migrates
// the triage tables and seeds the lookup rows.
package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"triage/internal/infrastructure/persistence/migrations"
	"triage/internal/infrastructure/persistence/seeds"
	"triage/internal/shared/db"
	"triage/internal/shared/logger"
)

// Manager migrates every configured partition in turn.
type Manager struct {
	db     *gorm.DB
	runner *db.UnitOfWorkRunner
	logger logger.Interface
}

func NewManager(gdb *gorm.DB, log logger.Interface) *Manager {
	return &Manager{
		db:     gdb,
		runner: db.NewUnitOfWorkRunner(gdb),
		logger: log.Named("migration.manager"),
	}
}

// Options selects what Migrate does for each partition.
type Options struct {
	Seed bool
}

// Migrate creates and migrates each partition. It stops at the first
// partition that fails.
func (m *Manager) Migrate(ctx context.Context, partitions []string, opts Options) error {
	if len(partitions) == 0 {
		return fmt.Errorf("no partitions configured")
	}

	for _, p := range partitions {
		m.logger.Infow("migrating partition", "partition", p, "seed", opts.Seed)

		if err := db.EnsurePartition(m.db.WithContext(ctx), p); err != nil {
			m.logger.Errorw("failed to create partition", "partition", p, "error", err)
			return fmt.Errorf("failed to create partition %s: %w", p, err)
		}

		err := m.runner.PartitionScope(ctx, p, func(ctx context.Context) error {
			conn := db.GetTxFromContext(ctx, m.db)
			if err := migrations.MigrateTriageTables(conn); err != nil {
				return fmt.Errorf("failed to migrate tables: %w", err)
			}
			if !opts.Seed {
				return nil
			}
			if err := seeds.SeedLookupTables(conn); err != nil {
				return fmt.Errorf("failed to seed lookup tables: %w", err)
			}
			return nil
		})
		if err != nil {
			m.logger.Errorw("partition migration failed", "partition", p, "error", err)
			return fmt.Errorf("partition %s: %w", p, err)
		}
	}

	m.logger.Infow("database migration completed successfully", "partitions", len(partitions))
	return nil
}
