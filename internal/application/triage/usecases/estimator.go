package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"triage/internal/application/triage/dto"
	"triage/internal/domain/tenant"
	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	apperrors "triage/internal/shared/errors"
	"triage/internal/shared/logger"
)

// WaitTimeEstimator computes the cached per-unit aggregate and live
// per-position estimates. Both go through triage.EstimateWaitMinutes.
type WaitTimeEstimator struct {
	router  *tenant.Router
	runner  UnitOfWorkRunner
	tickets triage.TicketRepository
	clock   triage.ClockEntryRepository
	queue   QueueStore
	cache   WaitTimeCache
	logger  logger.Interface
	now     func() time.Time
}

func NewWaitTimeEstimator(
	router *tenant.Router,
	runner UnitOfWorkRunner,
	tickets triage.TicketRepository,
	clock triage.ClockEntryRepository,
	queue QueueStore,
	cache WaitTimeCache,
	logger logger.Interface,
) *WaitTimeEstimator {
	return &WaitTimeEstimator{
		router:  router,
		runner:  runner,
		tickets: tickets,
		clock:   clock,
		queue:   queue,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// scope runs fn against the partition of unit, or the partition already
// bound to ctx.
func (e *WaitTimeEstimator) scope(ctx context.Context, unit string, fn func(ctx context.Context) error) error {
	ctx, release := tenant.Bind(ctx, e.router.ResolvePartition(unit))
	defer release()
	return e.runner.PartitionScope(ctx, tenant.MustPartition(ctx), fn)
}

// RefreshAggregate recounts on-duty doctors and active tickets per class and
// caches the result. A failed cache write is only logged.
func (e *WaitTimeEstimator) RefreshAggregate(ctx context.Context, unit string) error {
	unit = tenant.CanonicalUnit(unit)
	agg := &dto.WaitTimeAggregate{
		Unit:                  unit,
		CalculatedAt:          e.now().UTC(),
		AverageServiceMinutes: triage.AverageServiceMinutes,
	}

	err := e.scope(ctx, unit, func(ctx context.Context) error {
		onDuty, err := e.clock.CountOnDuty(ctx)
		if err != nil {
			return err
		}
		agg.OnDuty = onDuty

		for _, class := range vo.AggregateClasses() {
			active, err := e.tickets.CountActiveByPriority(ctx, class)
			if err != nil {
				return err
			}
			agg.Set(class, dto.ClassEstimate{
				ActiveTickets: active,
				Minutes:       triage.EstimateWaitMinutes(active, onDuty),
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to compute wait-time aggregate for %s: %w", unit, err)
	}

	if err := e.cache.Save(ctx, unit, agg); err != nil {
		e.logger.Warnw("failed to cache wait-time aggregate", "unit", unit, "error", err)
		return nil
	}
	e.logger.Debugw("wait-time aggregate refreshed", "unit", unit, "on_duty", agg.OnDuty)
	return nil
}

func (e *WaitTimeEstimator) countOnDuty(ctx context.Context, unit string) (int64, error) {
	var onDuty int64
	err := e.scope(ctx, unit, func(ctx context.Context) error {
		n, err := e.clock.CountOnDuty(ctx)
		onDuty = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count staff on duty in %s: %w", unit, err)
	}
	return onDuty, nil
}

// EstimateForQueuePosition estimates the wait of whoever holds score in the
// unit queue.
func (e *WaitTimeEstimator) EstimateForQueuePosition(ctx context.Context, unit string, score float64) (*dto.QueueEstimate, error) {
	unit = tenant.CanonicalUnit(unit)

	ahead, err := e.queue.CountAhead(ctx, unit, score)
	if err != nil {
		return nil, err
	}
	onDuty, err := e.countOnDuty(ctx, unit)
	if err != nil {
		return nil, err
	}
	return &dto.QueueEstimate{
		Minutes:     triage.EstimateWaitMinutes(ahead, onDuty),
		PeopleAhead: ahead,
		OnDuty:      onDuty,
	}, nil
}

// EstimateForTicketNumber estimates the wait of a ticket that would be
// admitted with class and rawNumber, whether or not it exists.
func (e *WaitTimeEstimator) EstimateForTicketNumber(ctx context.Context, unit string, class vo.PriorityClass, rawNumber int64) (*dto.QueueEstimate, error) {
	unit = tenant.CanonicalUnit(unit)

	onDuty, err := e.countOnDuty(ctx, unit)
	if err != nil {
		return nil, err
	}
	if onDuty <= 0 {
		return &dto.QueueEstimate{OnDuty: onDuty}, nil
	}

	score := triage.Score(class, triage.NormalizeTicketNumber(rawNumber))
	ahead, err := e.queue.CountAhead(ctx, unit, score)
	if err != nil {
		return nil, err
	}
	return &dto.QueueEstimate{
		Minutes:     triage.EstimateWaitMinutes(ahead, onDuty),
		PeopleAhead: ahead,
		OnDuty:      onDuty,
	}, nil
}

// EstimateForPatient estimates the wait of the patient's earliest active
// ticket from its live queue score.
func (e *WaitTimeEstimator) EstimateForPatient(ctx context.Context, unit string, patientID int64) (*dto.QueueEstimate, error) {
	unit = tenant.CanonicalUnit(unit)

	var ticketID int64
	err := e.scope(ctx, unit, func(ctx context.Context) error {
		active, err := e.tickets.FindActiveByPatient(ctx, patientID)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return apperrors.NewNotFoundError("no active ticket for patient", fmt.Sprintf("codSus=%d", patientID))
		}
		ticketID = active[0].ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	score, err := e.queue.Score(ctx, unit, ticketID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, apperrors.NewNotFoundError("ticket is not queued", fmt.Sprintf("nrSeqAtendimento=%d", ticketID))
	}

	estimate, err := e.EstimateForQueuePosition(ctx, unit, *score)
	if err != nil {
		return nil, err
	}
	estimate.TicketID = &ticketID
	return estimate, nil
}

// CachedAggregate returns the cached aggregate document as stored.
func (e *WaitTimeEstimator) CachedAggregate(ctx context.Context, unit string) ([]byte, error) {
	unit = tenant.CanonicalUnit(unit)
	data, err := e.cache.Get(ctx, unit)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.NewNotFoundError("no wait-time aggregate for unit", unit)
	}
	return data, nil
}

// CachedMinutes reads the estimate of class from the cached aggregate. A
// class without an entry (Emergency) is not found; a null estimate is
// returned as nil minutes.
func (e *WaitTimeEstimator) CachedMinutes(ctx context.Context, unit string, class vo.PriorityClass) (*dto.CachedEstimate, error) {
	data, err := e.CachedAggregate(ctx, unit)
	if err != nil {
		return nil, err
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		e.logger.Errorw("malformed cached wait-time aggregate", "unit", unit, "error", err)
		return nil, apperrors.NewInternalError("malformed cached aggregate")
	}

	entry, ok := root[class.Name()]
	if !ok || isJSONNull(entry) {
		return nil, apperrors.NewNotFoundError("no estimate for class", class.Name())
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return nil, apperrors.NewInternalError("malformed cached aggregate")
	}

	raw, ok := fields["tempoEstimadoMin"]
	if !ok || isJSONNull(raw) {
		return &dto.CachedEstimate{}, nil
	}

	var minutes float64
	if err := json.Unmarshal(raw, &minutes); err != nil {
		e.logger.Errorw("non-numeric cached estimate", "unit", unit, "class", class.Name(), "value", string(raw))
		return nil, apperrors.NewInternalError("malformed cached aggregate")
	}
	m := int64(minutes)
	return &dto.CachedEstimate{Minutes: &m}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
