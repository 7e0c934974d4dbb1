package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"triage/internal/infrastructure/database"
	"triage/internal/infrastructure/migration"
	"triage/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
	partitions []string
	noSeed     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create and migrate unit partitions",
		Long: `Create the schema (postgres) or database (mysql) of every configured unit
partition, migrate the triage tables inside it and seed the lookup tables.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringSliceVarP(&partitions, "partition", "p", nil, "Partition to migrate (repeatable, default: database.partitions)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Skip seeding the lookup tables")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Load(env, configPath)
	if err != nil {
		return err
	}

	gdb, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	targets := partitions
	if len(targets) == 0 {
		targets = cfg.Database.Partitions
	}

	manager := migration.NewManager(gdb, log)
	if err := manager.Migrate(cmd.Context(), targets, migration.Options{Seed: !noSeed}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migration completed", "partitions", targets)
	return nil
}
