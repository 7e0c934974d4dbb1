package usecases

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/shared/db"
)

type mockTicketRepository struct {
	SaveFunc                   func(ctx context.Context, t *triage.Ticket) error
	GetByIDFunc                func(ctx context.Context, id int64) (*triage.Ticket, error)
	FindActiveByPatientFunc    func(ctx context.Context, patientID int64) ([]*triage.Ticket, error)
	FindByNumberAndPatientFunc func(ctx context.Context, number int, patientID int64) (*triage.Ticket, error)
	CountActiveByPriorityFunc  func(ctx context.Context, priority vo.PriorityClass) (int64, error)
}

func (m *mockTicketRepository) Save(ctx context.Context, t *triage.Ticket) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, id int64) (*triage.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTicketRepository) FindActiveByPatient(ctx context.Context, patientID int64) ([]*triage.Ticket, error) {
	if m.FindActiveByPatientFunc != nil {
		return m.FindActiveByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *mockTicketRepository) FindByNumberAndPatient(ctx context.Context, number int, patientID int64) (*triage.Ticket, error) {
	if m.FindByNumberAndPatientFunc != nil {
		return m.FindByNumberAndPatientFunc(ctx, number, patientID)
	}
	return nil, nil
}

func (m *mockTicketRepository) CountActiveByPriority(ctx context.Context, priority vo.PriorityClass) (int64, error) {
	if m.CountActiveByPriorityFunc != nil {
		return m.CountActiveByPriorityFunc(ctx, priority)
	}
	return 0, nil
}

type mockPatientRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*triage.Patient, error)
}

func (m *mockPatientRepository) GetByID(ctx context.Context, id int64) (*triage.Patient, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockStaffRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*triage.Staff, error)
}

func (m *mockStaffRepository) GetByID(ctx context.Context, id int64) (*triage.Staff, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockClockEntryRepository struct {
	CreateFunc          func(ctx context.Context, entry *triage.ClockEntry) error
	UpdateFunc          func(ctx context.Context, entry *triage.ClockEntry) error
	FindOpenByStaffFunc func(ctx context.Context, staffID int64) (*triage.ClockEntry, error)
	CountOnDutyFunc     func(ctx context.Context) (int64, error)
}

func (m *mockClockEntryRepository) Create(ctx context.Context, entry *triage.ClockEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *mockClockEntryRepository) Update(ctx context.Context, entry *triage.ClockEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entry)
	}
	return nil
}

func (m *mockClockEntryRepository) FindOpenByStaff(ctx context.Context, staffID int64) (*triage.ClockEntry, error) {
	if m.FindOpenByStaffFunc != nil {
		return m.FindOpenByStaffFunc(ctx, staffID)
	}
	return nil, nil
}

func (m *mockClockEntryRepository) CountOnDuty(ctx context.Context) (int64, error) {
	if m.CountOnDutyFunc != nil {
		return m.CountOnDutyFunc(ctx)
	}
	return 0, nil
}

type mockStateHistoryRepository struct {
	mu      sync.Mutex
	records []triage.StateRecord
}

func (m *mockStateHistoryRepository) Append(ctx context.Context, record triage.StateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

type queueCall struct {
	Op       string
	Unit     string
	TicketID int64
	Score    float64
}

type mockQueueStore struct {
	mu             sync.Mutex
	calls          []queueCall
	EnqueueFunc    func(ctx context.Context, unit string, ticketID int64, score float64) error
	CountAheadFunc func(ctx context.Context, unit string, score float64) (int64, error)
	ScoreFunc      func(ctx context.Context, unit string, ticketID int64) (*float64, error)
}

func (m *mockQueueStore) record(c queueCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockQueueStore) callsOf(op string) []queueCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []queueCall
	for _, c := range m.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockQueueStore) Enqueue(ctx context.Context, unit string, ticketID int64, score float64) error {
	m.record(queueCall{Op: "enqueue", Unit: unit, TicketID: ticketID, Score: score})
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, unit, ticketID, score)
	}
	return nil
}

func (m *mockQueueStore) Remove(ctx context.Context, unit string, ticketID int64) error {
	m.record(queueCall{Op: "remove", Unit: unit, TicketID: ticketID})
	return nil
}

func (m *mockQueueStore) Prioritize(ctx context.Context, unit string, ticketID int64) (float64, error) {
	m.record(queueCall{Op: "prioritize", Unit: unit, TicketID: ticketID})
	return -1, nil
}

func (m *mockQueueStore) CountAhead(ctx context.Context, unit string, score float64) (int64, error) {
	m.record(queueCall{Op: "count", Unit: unit, Score: score})
	if m.CountAheadFunc != nil {
		return m.CountAheadFunc(ctx, unit, score)
	}
	return 0, nil
}

func (m *mockQueueStore) Score(ctx context.Context, unit string, ticketID int64) (*float64, error) {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, unit, ticketID)
	}
	return nil, nil
}

func (m *mockQueueStore) SaveSnapshot(ctx context.Context, unit string, ticket *triage.Ticket) {
	m.record(queueCall{Op: "snapshot", Unit: unit, TicketID: ticket.ID()})
}

// mockIdempotencyGuard keeps markers in memory unless a func overrides it.
type mockIdempotencyGuard struct {
	mu                sync.Mutex
	processed         map[uuid.UUID]bool
	sequenceCalls     int
	NextSequenceFunc  func(ctx context.Context, name string) (int64, error)
	MarkProcessedFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockIdempotencyGuard) IsProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed[id], nil
}

func (m *mockIdempotencyGuard) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed == nil {
		m.processed = make(map[uuid.UUID]bool)
	}
	m.processed[id] = true
	return nil
}

func (m *mockIdempotencyGuard) NextSequence(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	m.sequenceCalls++
	n := int64(m.sequenceCalls)
	m.mu.Unlock()
	if m.NextSequenceFunc != nil {
		return m.NextSequenceFunc(ctx, name)
	}
	return n, nil
}

type mockRefresher struct {
	mu    sync.Mutex
	units []string
	Err   error
}

func (m *mockRefresher) RefreshAggregate(ctx context.Context, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append(m.units, unit)
	return m.Err
}

type mockWaitTimeCache struct {
	SaveFunc func(ctx context.Context, unit string, doc any) error
	GetFunc  func(ctx context.Context, unit string) ([]byte, error)
}

func (m *mockWaitTimeCache) Save(ctx context.Context, unit string, doc any) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, unit, doc)
	}
	return nil
}

func (m *mockWaitTimeCache) Get(ctx context.Context, unit string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, unit)
	}
	return nil, nil
}

// inlineRunner runs units of work without a database. Partitions it was
// asked for are recorded.
type inlineRunner struct {
	mu         sync.Mutex
	partitions []string
}

func (r *inlineRunner) Run(ctx context.Context, partition string, fn func(ctx context.Context, uow *db.UnitOfWork) error) (*db.Committed, error) {
	r.mu.Lock()
	r.partitions = append(r.partitions, partition)
	r.mu.Unlock()

	uow := db.NewUnitOfWork(partition)
	if err := fn(ctx, uow); err != nil {
		return nil, err
	}
	return uow.Seal(), nil
}

func (r *inlineRunner) PartitionScope(ctx context.Context, partition string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.partitions = append(r.partitions, partition)
	r.mu.Unlock()
	return fn(ctx)
}
