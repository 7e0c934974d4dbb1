package consume

import (
	"github.com/spf13/cobra"

	"triage/internal/infrastructure/database"
	"triage/internal/infrastructure/messaging"
	"triage/internal/infrastructure/migration"
	"triage/internal/interfaces/adapters"
	"triage/internal/interfaces/cli/bootstrap"
	"triage/internal/interfaces/cli/server"
	"triage/internal/shared/goroutine"
)

var (
	env         string
	configPath  string
	withAPI     bool
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume healthcare events",
		Long: `Read triage events from the broker, apply them to the unit stores and queues,
and keep the cached wait-time aggregates fresh.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&withAPI, "with-api", false, "Also serve the wait-time read API from this process")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Migrate the configured partitions before consuming")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Load(env, configPath)
	if err != nil {
		return err
	}
	log.Infow("starting consumer",
		"environment", env,
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID,
		"brokers", cfg.Kafka.Brokers,
	)

	gdb, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	if autoMigrate {
		if err := migration.NewManager(gdb, log).Migrate(ctx, cfg.Database.Partitions, migration.Options{Seed: true}); err != nil {
			return err
		}
	}

	redisClient, err := bootstrap.OpenRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	services := adapters.NewTriageServices(gdb, redisClient, log)

	reader := messaging.NewKafkaReader(&cfg.Kafka)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warnw("failed to close kafka reader", "error", err)
		}
	}()
	consumer := messaging.NewConsumer(reader, services.Processor, cfg.Kafka.MaxRetryInterval(), log)

	var (
		apiErr  error
		apiDone <-chan struct{}
	)
	if withAPI {
		apiDone = goroutine.SafeGo(log, "read-api", func() {
			apiErr = server.Serve(ctx, cfg, gdb, redisClient, log)
			if apiErr != nil {
				stop()
			}
		})
	}

	var consumeErr error
	consumerDone := goroutine.SafeGo(log, "kafka-consumer", func() {
		consumeErr = consumer.Run(ctx)
	})

	<-consumerDone
	stop()
	if withAPI {
		<-apiDone
	}

	if consumeErr != nil {
		return consumeErr
	}
	return apiErr
}
