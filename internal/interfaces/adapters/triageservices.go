// Package adapters wires infrastructure implementations into the triage use cases.
package adapters

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"triage/internal/application/triage/usecases"
	"triage/internal/domain/tenant"
	"triage/internal/infrastructure/cache"
	"triage/internal/infrastructure/repository"
	"triage/internal/shared/db"
	"triage/internal/shared/logger"
)

// TriageServices holds the use cases shared by the consumer and the read API.
type TriageServices struct {
	Processor *usecases.EventProcessor
	Estimator *usecases.WaitTimeEstimator
}

func NewTriageServices(gdb *gorm.DB, redisClient *redis.Client, log logger.Interface) *TriageServices {
	router := tenant.NewRouter()
	runner := db.NewUnitOfWorkRunner(gdb)
	queue := cache.NewQueueStore(redisClient, log.Named("cache.queue"))

	repos := usecases.Repositories{
		Tickets:      repository.NewTicketRepository(gdb),
		Patients:     repository.NewPatientRepository(gdb),
		Staff:        repository.NewStaffRepository(gdb),
		ClockEntries: repository.NewClockEntryRepository(gdb),
		StateHistory: repository.NewStateHistoryRepository(gdb),
	}

	estimator := usecases.NewWaitTimeEstimator(
		router,
		runner,
		repos.Tickets,
		repos.ClockEntries,
		queue,
		cache.NewWaitTimeCache(redisClient),
		log.Named("usecases.estimator"),
	)

	processor := usecases.NewEventProcessor(
		router,
		runner,
		repos,
		queue,
		cache.NewIdempotencyGuard(redisClient),
		estimator,
		log.Named("usecases.processor"),
	)

	return &TriageServices{Processor: processor, Estimator: estimator}
}
