package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"triage/internal/application/events"
	"triage/internal/domain/tenant"
	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/shared/db"
	apperrors "triage/internal/shared/errors"
	"triage/internal/shared/logger"
)

// EventProcessor applies decoded envelopes to the per-tenant store and the
// unit queues. Each envelope is applied in one unit of work; the processed
// marker and the aggregate refresh run only after it committed.
type EventProcessor struct {
	router  *tenant.Router
	runner  UnitOfWorkRunner
	repos   Repositories
	queue   QueueStore
	guard   IdempotencyGuard
	metrics AggregateRefresher
	logger  logger.Interface
	now     func() time.Time
}

func NewEventProcessor(
	router *tenant.Router,
	runner UnitOfWorkRunner,
	repos Repositories,
	queue QueueStore,
	guard IdempotencyGuard,
	metrics AggregateRefresher,
	logger logger.Interface,
) *EventProcessor {
	return &EventProcessor{
		router:  router,
		runner:  runner,
		repos:   repos,
		queue:   queue,
		guard:   guard,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Process applies env exactly once in effect. A nil return means the
// envelope is done (applied, skipped as a duplicate, or a modeled no-op);
// any error must lead to redelivery.
func (p *EventProcessor) Process(ctx context.Context, env *events.Envelope) error {
	if env == nil {
		return fmt.Errorf("envelope is required")
	}

	ctx, release := tenant.Bind(ctx, p.router.ResolvePartition(env.Unit()))
	defer release()
	partition := tenant.MustPartition(ctx)

	log := p.logger.With("event_id", env.ID.String(), "event_type", env.Type.String(), "partition", partition)

	processed, err := p.guard.IsProcessed(ctx, env.ID)
	if err != nil {
		log.Errorw("failed to check processed marker", "error", err)
		return err
	}
	if processed {
		log.Debugw("event already processed, skipping")
		return nil
	}

	unit := p.unitFor(ctx, env)
	committed, err := p.runner.Run(ctx, partition, func(ctx context.Context, uow *db.UnitOfWork) error {
		dirty, err := p.apply(ctx, log, unit, env)
		if err != nil {
			return err
		}

		uow.AfterCommit("mark processed", func(ctx context.Context) error {
			return p.guard.MarkProcessed(ctx, env.ID)
		})
		if dirty || env.Type.ForcesMetricsRefresh() {
			uow.AfterCommit("refresh wait-time aggregate", func(ctx context.Context) error {
				return p.metrics.RefreshAggregate(ctx, unit)
			})
		}
		return nil
	})
	if err != nil {
		log.Errorw("failed to process event", "unit", unit, "error", err)
		return err
	}

	if err := committed.Apply(ctx); err != nil {
		log.Warnw("post-commit action failed", "unit", unit, "error", err)
	}
	log.Debugw("event processed", "unit", unit)
	return nil
}

// unitFor is the public unit used for queue and metrics keys: the payload
// unit when present, otherwise the unit of the bound partition.
func (p *EventProcessor) unitFor(ctx context.Context, env *events.Envelope) string {
	if u := env.Unit(); u != "" {
		return tenant.CanonicalUnit(u)
	}
	return tenant.UnitForPartition(tenant.MustPartition(ctx))
}

// apply dispatches to the transition of env's kind and reports whether it
// changed anything. Missing patients, staff or tickets are no-ops.
func (p *EventProcessor) apply(ctx context.Context, log logger.Interface, unit string, env *events.Envelope) (bool, error) {
	at := env.EventTime()

	var (
		dirty bool
		err   error
	)
	switch payload := env.Payload.(type) {
	case events.ClockPayload:
		switch env.Type {
		case events.EventStaffClockIn:
			dirty, err = p.clockIn(ctx, log, payload, at)
		case events.EventStaffClockOut:
			dirty, err = p.clockOut(ctx, log, payload, at)
		default:
			log.Warnw("unexpected payload for event type")
		}
	case events.TicketIssuedPayload:
		dirty, err = p.issueTicket(ctx, log, unit, payload, at)
	case events.TicketRefPayload:
		switch env.Type {
		case events.EventTicketPrioritized:
			dirty, err = p.prioritizeTicket(ctx, unit, payload, at)
		case events.EventTicketFinished:
			dirty, err = p.closeTicket(ctx, unit, payload, vo.StateFinished, at)
		case events.EventTicketExpired:
			dirty, err = p.closeTicket(ctx, unit, payload, vo.StateExpired, at)
		default:
			log.Warnw("unexpected payload for event type")
		}
	default:
		log.Warnw("unhandled event type, ignoring")
	}

	if apperrors.IsNotFoundError(err) {
		log.Warnw("referenced entity not found, skipping", "error", err)
		return false, nil
	}
	if errors.Is(err, triage.ErrTicketTerminal) {
		log.Infow("ticket already closed, ignoring transition", "error", err)
		return false, nil
	}
	return dirty, err
}

func (p *EventProcessor) clockIn(ctx context.Context, log logger.Interface, payload events.ClockPayload, at time.Time) (bool, error) {
	staff, err := p.repos.Staff.GetByID(ctx, payload.StaffID)
	if err != nil {
		return false, err
	}
	if !staff.IsDoctor() {
		log.Infow("ignoring clock-in of non-doctor staff", "staff_id", staff.ID(), "role", staff.RoleName())
		return false, nil
	}

	open, err := p.repos.ClockEntries.FindOpenByStaff(ctx, staff.ID())
	if err != nil {
		return false, err
	}
	if open != nil {
		log.Infow("staff already clocked in", "staff_id", staff.ID(), "entry_id", open.ID())
		return false, nil
	}

	entry, err := triage.NewClockEntry(p.nextClockEntryID(ctx, log), staff.ID(), at)
	if err != nil {
		return false, err
	}
	if err := p.repos.ClockEntries.Create(ctx, entry); err != nil {
		return false, err
	}
	log.Infow("staff clocked in", "staff_id", staff.ID(), "entry_id", entry.ID())
	return true, nil
}

func (p *EventProcessor) clockOut(ctx context.Context, log logger.Interface, payload events.ClockPayload, at time.Time) (bool, error) {
	staff, err := p.repos.Staff.GetByID(ctx, payload.StaffID)
	if err != nil {
		return false, err
	}
	if !staff.IsDoctor() {
		log.Infow("ignoring clock-out of non-doctor staff", "staff_id", staff.ID(), "role", staff.RoleName())
		return false, nil
	}

	open, err := p.repos.ClockEntries.FindOpenByStaff(ctx, staff.ID())
	if err != nil {
		return false, err
	}
	if open == nil {
		log.Infow("no open clock entry", "staff_id", staff.ID())
		return false, nil
	}

	if err := open.Close(at); err != nil {
		return false, err
	}
	if err := p.repos.ClockEntries.Update(ctx, open); err != nil {
		return false, err
	}
	log.Infow("staff clocked out", "staff_id", staff.ID(), "entry_id", open.ID())
	return true, nil
}

// nextClockEntryID draws from the shared sequence. When the sequence is
// unavailable or has left the 32-bit range the id is derived from the clock.
func (p *EventProcessor) nextClockEntryID(ctx context.Context, log logger.Interface) int64 {
	seq, err := p.guard.NextSequence(ctx, triage.ClockEntrySequence)
	if err == nil && seq > 0 && seq <= math.MaxInt32 {
		return seq
	}
	log.Warnw("clock entry sequence unusable, deriving id from clock", "sequence", seq, "error", err)

	id := p.now().UnixMilli() % math.MaxInt32
	if id <= 0 {
		id = 1
	}
	return id
}

func (p *EventProcessor) issueTicket(ctx context.Context, log logger.Interface, unit string, payload events.TicketIssuedPayload, at time.Time) (bool, error) {
	number := triage.NormalizeTicketNumber(payload.TicketNumber)

	patient, err := p.repos.Patients.GetByID(ctx, payload.PatientID)
	if err != nil {
		return false, err
	}

	active, err := p.repos.Tickets.FindActiveByPatient(ctx, patient.ID())
	if err != nil {
		return false, err
	}
	if len(active) > 0 {
		return true, p.cancelDuplicates(ctx, log, unit, patient, active, payload.TicketNumber, at)
	}

	existing, err := p.repos.Tickets.FindByNumberAndPatient(ctx, number, patient.ID())
	if err != nil {
		return false, err
	}
	if existing != nil && existing.IsActive() {
		log.Infow("duplicate ticket submission ignored", "ticket_id", existing.ID(), "number", number)
		return false, nil
	}

	ticket, err := triage.NewTicket(payload.TicketNumber, patient)
	if err != nil {
		return false, err
	}
	if err := p.save(ctx, ticket, at); err != nil {
		return false, err
	}
	if err := p.queue.Enqueue(ctx, unit, ticket.ID(), ticket.Score()); err != nil {
		return false, err
	}
	p.queue.SaveSnapshot(ctx, unit, ticket)

	log.Infow("ticket issued",
		"ticket_id", ticket.ID(),
		"number", ticket.Number(),
		"priority", ticket.Priority().String(),
		"unit", unit,
	)
	return true, nil
}

// cancelDuplicates keeps the earliest active ticket, cancels the others and
// records the new attempt as an already cancelled ticket.
func (p *EventProcessor) cancelDuplicates(
	ctx context.Context,
	log logger.Interface,
	unit string,
	patient *triage.Patient,
	active []*triage.Ticket,
	rawNumber int64,
	at time.Time,
) error {
	for _, dup := range active[1:] {
		dup.Cancel()
		if err := p.save(ctx, dup, at); err != nil {
			return err
		}
		if err := p.queue.Remove(ctx, unit, dup.ID()); err != nil {
			return err
		}
	}

	attempt, err := triage.NewCancelledTicket(rawNumber, patient)
	if err != nil {
		return err
	}
	if err := p.save(ctx, attempt, at); err != nil {
		return err
	}

	log.Warnw("patient already holds an active ticket, duplicate cancelled",
		"patient_id", patient.ID(),
		"kept_ticket_id", active[0].ID(),
		"cancelled", len(active)-1,
		"attempt_ticket_id", attempt.ID(),
	)
	return nil
}

func (p *EventProcessor) prioritizeTicket(ctx context.Context, unit string, payload events.TicketRefPayload, at time.Time) (bool, error) {
	ticket, err := p.repos.Tickets.GetByID(ctx, payload.TicketID)
	if err != nil {
		return false, err
	}

	if err := ticket.Escalate(); err != nil {
		return false, err
	}
	if err := p.save(ctx, ticket, at); err != nil {
		return false, err
	}
	if _, err := p.queue.Prioritize(ctx, unit, ticket.ID()); err != nil {
		return false, err
	}
	p.queue.SaveSnapshot(ctx, unit, ticket)
	return true, nil
}

func (p *EventProcessor) closeTicket(ctx context.Context, unit string, payload events.TicketRefPayload, state vo.TicketState, at time.Time) (bool, error) {
	ticket, err := p.repos.Tickets.GetByID(ctx, payload.TicketID)
	if err != nil {
		return false, err
	}

	if err := ticket.Close(state); err != nil {
		return false, err
	}
	if err := p.save(ctx, ticket, at); err != nil {
		return false, err
	}
	if err := p.queue.Remove(ctx, unit, ticket.ID()); err != nil {
		return false, err
	}
	return true, nil
}

// save persists the ticket and records its current state in the history.
func (p *EventProcessor) save(ctx context.Context, ticket *triage.Ticket, at time.Time) error {
	if err := p.repos.Tickets.Save(ctx, ticket); err != nil {
		return err
	}
	return p.repos.StateHistory.Append(ctx, triage.NewStateRecord(ticket.ID(), ticket.State(), at))
}
