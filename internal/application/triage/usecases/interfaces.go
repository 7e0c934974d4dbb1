package usecases

import (
	"context"

	"github.com/google/uuid"

	"triage/internal/domain/triage"
	"triage/internal/shared/db"
)

// QueueStore is the per-unit priority queue. Implemented by cache.QueueStore.
type QueueStore interface {
	Enqueue(ctx context.Context, unit string, ticketID int64, score float64) error
	Remove(ctx context.Context, unit string, ticketID int64) error
	Prioritize(ctx context.Context, unit string, ticketID int64) (float64, error)
	CountAhead(ctx context.Context, unit string, score float64) (int64, error)
	Score(ctx context.Context, unit string, ticketID int64) (*float64, error)
	SaveSnapshot(ctx context.Context, unit string, ticket *triage.Ticket)
}

type IdempotencyGuard interface {
	IsProcessed(ctx context.Context, id uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	NextSequence(ctx context.Context, name string) (int64, error)
}

type WaitTimeCache interface {
	Save(ctx context.Context, unit string, doc any) error
	Get(ctx context.Context, unit string) ([]byte, error)
}

// UnitOfWorkRunner is implemented by db.UnitOfWorkRunner.
type UnitOfWorkRunner interface {
	Run(ctx context.Context, partition string, fn func(ctx context.Context, uow *db.UnitOfWork) error) (*db.Committed, error)
	PartitionScope(ctx context.Context, partition string, fn func(ctx context.Context) error) error
}

// AggregateRefresher recomputes the cached wait-time aggregate of a unit.
type AggregateRefresher interface {
	RefreshAggregate(ctx context.Context, unit string) error
}

// Repositories groups the per-tenant stores the processor writes to.
type Repositories struct {
	Tickets      triage.TicketRepository
	Patients     triage.PatientRepository
	Staff        triage.StaffRepository
	ClockEntries triage.ClockEntryRepository
	StateHistory triage.StateHistoryRepository
}
