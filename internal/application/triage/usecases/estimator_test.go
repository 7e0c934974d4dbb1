package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/application/triage/dto"
	"triage/internal/domain/tenant"
	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	apperrors "triage/internal/shared/errors"
	"triage/internal/shared/logger"
)

type estimatorFixture struct {
	tickets *mockTicketRepository
	clock   *mockClockEntryRepository
	queue   *mockQueueStore
	cache   *mockWaitTimeCache
	runner  *inlineRunner
}

func newEstimatorFixture(onDuty int64) *estimatorFixture {
	return &estimatorFixture{
		tickets: &mockTicketRepository{},
		clock: &mockClockEntryRepository{
			CountOnDutyFunc: func(ctx context.Context) (int64, error) { return onDuty, nil },
		},
		queue:  &mockQueueStore{},
		cache:  &mockWaitTimeCache{},
		runner: &inlineRunner{},
	}
}

func (f *estimatorFixture) estimator() *WaitTimeEstimator {
	e := NewWaitTimeEstimator(tenant.NewRouter(), f.runner, f.tickets, f.clock, f.queue, f.cache, logger.NewNop())
	e.now = func() time.Time { return occurredAt }
	return e
}

func intp(v int64) *int64 { return &v }

func TestWaitTimeEstimator_RefreshAggregate(t *testing.T) {
	active := map[vo.PriorityClass]int64{
		vo.PriorityNormal:   13,
		vo.PriorityElderly:  0,
		vo.PriorityPregnant: 1,
	}

	t.Run("two doctors", func(t *testing.T) {
		f := newEstimatorFixture(2)
		var queried []vo.PriorityClass
		f.tickets.CountActiveByPriorityFunc = func(ctx context.Context, p vo.PriorityClass) (int64, error) {
			queried = append(queried, p)
			return active[p], nil
		}
		var saved *dto.WaitTimeAggregate
		var savedUnit string
		f.cache.SaveFunc = func(ctx context.Context, unit string, doc any) error {
			savedUnit = unit
			saved = doc.(*dto.WaitTimeAggregate)
			return nil
		}

		require.NoError(t, f.estimator().RefreshAggregate(context.Background(), "upa2"))

		assert.NotContains(t, queried, vo.PriorityEmergency)
		assert.Equal(t, "UPA2", savedUnit)
		assert.Equal(t, []string{"und_atd2"}, f.runner.partitions)
		require.NotNil(t, saved)
		assert.Equal(t, &dto.WaitTimeAggregate{
			Unit:                  "UPA2",
			CalculatedAt:          occurredAt,
			OnDuty:                2,
			AverageServiceMinutes: 10,
			Normal:                dto.ClassEstimate{ActiveTickets: 13, Minutes: intp(65)},
			Elderly:               dto.ClassEstimate{ActiveTickets: 0, Minutes: intp(0)},
			Pregnant:              dto.ClassEstimate{ActiveTickets: 1, Minutes: intp(5)},
		}, saved)
	})

	t.Run("nobody on duty", func(t *testing.T) {
		f := newEstimatorFixture(0)
		f.tickets.CountActiveByPriorityFunc = func(ctx context.Context, p vo.PriorityClass) (int64, error) {
			return active[p], nil
		}
		var saved *dto.WaitTimeAggregate
		f.cache.SaveFunc = func(ctx context.Context, unit string, doc any) error {
			saved = doc.(*dto.WaitTimeAggregate)
			return nil
		}

		require.NoError(t, f.estimator().RefreshAggregate(context.Background(), "UPA1"))

		require.NotNil(t, saved)
		assert.Nil(t, saved.Normal.Minutes)
		assert.Nil(t, saved.Elderly.Minutes)
		assert.Nil(t, saved.Pregnant.Minutes)
		assert.Equal(t, int64(13), saved.Normal.ActiveTickets)
	})

	t.Run("cache write failure is not an error", func(t *testing.T) {
		f := newEstimatorFixture(1)
		f.cache.SaveFunc = func(ctx context.Context, unit string, doc any) error {
			return errors.New("redis unavailable")
		}
		assert.NoError(t, f.estimator().RefreshAggregate(context.Background(), "UPA1"))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newEstimatorFixture(1)
		f.clock.CountOnDutyFunc = func(ctx context.Context) (int64, error) {
			return 0, errors.New("database unavailable")
		}
		f.cache.SaveFunc = func(ctx context.Context, unit string, doc any) error {
			t.Fatal("nothing to cache")
			return nil
		}
		assert.Error(t, f.estimator().RefreshAggregate(context.Background(), "UPA1"))
	})
}

func TestWaitTimeEstimator_EstimateForQueuePosition(t *testing.T) {
	f := newEstimatorFixture(2)
	f.queue.CountAheadFunc = func(ctx context.Context, unit string, score float64) (int64, error) {
		return 13, nil
	}

	got, err := f.estimator().EstimateForQueuePosition(context.Background(), "UPA1", 3_000_020)

	require.NoError(t, err)
	assert.Equal(t, &dto.QueueEstimate{Minutes: intp(65), PeopleAhead: 13, OnDuty: 2}, got)
}

func TestWaitTimeEstimator_EstimateForTicketNumber(t *testing.T) {
	t.Run("scores the class and normalized number", func(t *testing.T) {
		f := newEstimatorFixture(3)
		f.queue.CountAheadFunc = func(ctx context.Context, unit string, score float64) (int64, error) {
			return 4, nil
		}

		got, err := f.estimator().EstimateForTicketNumber(context.Background(), "UPA1", vo.PriorityElderly, 1000)

		require.NoError(t, err)
		assert.Equal(t, []queueCall{{Op: "count", Unit: "UPA1", Score: 2_000_001}}, f.queue.calls)
		assert.Equal(t, &dto.QueueEstimate{Minutes: intp(14), PeopleAhead: 4, OnDuty: 3}, got)
	})

	t.Run("nobody on duty skips the queue", func(t *testing.T) {
		f := newEstimatorFixture(0)

		got, err := f.estimator().EstimateForTicketNumber(context.Background(), "UPA1", vo.PriorityNormal, 5)

		require.NoError(t, err)
		assert.Empty(t, f.queue.calls)
		assert.Nil(t, got.Minutes)
		assert.Zero(t, got.PeopleAhead)
	})
}

func TestWaitTimeEstimator_EstimateForPatient(t *testing.T) {
	t.Run("uses the earliest active ticket", func(t *testing.T) {
		f := newEstimatorFixture(1)
		f.tickets.FindActiveByPatientFunc = func(ctx context.Context, patientID int64) ([]*triage.Ticket, error) {
			return []*triage.Ticket{
				mustTicket(t, 42, 5, patientID, vo.PriorityNormal, vo.StateCreated),
				mustTicket(t, 43, 6, patientID, vo.PriorityNormal, vo.StateCreated),
			}, nil
		}
		f.queue.ScoreFunc = func(ctx context.Context, unit string, ticketID int64) (*float64, error) {
			assert.Equal(t, int64(42), ticketID)
			s := float64(3_000_005)
			return &s, nil
		}
		f.queue.CountAheadFunc = func(ctx context.Context, unit string, score float64) (int64, error) {
			assert.Equal(t, float64(3_000_005), score)
			return 3, nil
		}

		got, err := f.estimator().EstimateForPatient(context.Background(), "UPA1", 10)

		require.NoError(t, err)
		assert.Equal(t, &dto.QueueEstimate{Minutes: intp(30), PeopleAhead: 3, OnDuty: 1, TicketID: intp(42)}, got)
	})

	t.Run("no active ticket", func(t *testing.T) {
		f := newEstimatorFixture(1)
		_, err := f.estimator().EstimateForPatient(context.Background(), "UPA1", 10)
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("ticket not queued", func(t *testing.T) {
		f := newEstimatorFixture(1)
		f.tickets.FindActiveByPatientFunc = func(ctx context.Context, patientID int64) ([]*triage.Ticket, error) {
			return []*triage.Ticket{mustTicket(t, 42, 5, patientID, vo.PriorityNormal, vo.StateCreated)}, nil
		}
		_, err := f.estimator().EstimateForPatient(context.Background(), "UPA1", 10)
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestWaitTimeEstimator_CachedMinutes(t *testing.T) {
	doc := `{"unidadeAtendimento":"UPA1","normal":{"senhasAtivas":13,"tempoEstimadoMin":65},` +
		`"idoso":{"senhasAtivas":0,"tempoEstimadoMin":null},"gestante":{"senhasAtivas":1,"tempoEstimadoMin":"soon"}}`

	tests := []struct {
		name      string
		doc       string
		class     vo.PriorityClass
		want      *int64
		wantError apperrors.ErrorType
	}{
		{name: "numeric estimate", doc: doc, class: vo.PriorityNormal, want: intp(65)},
		{name: "null estimate", doc: doc, class: vo.PriorityElderly},
		{name: "non-numeric estimate", doc: doc, class: vo.PriorityPregnant, wantError: apperrors.ErrorTypeInternal},
		{name: "class without entry", doc: doc, class: vo.PriorityEmergency, wantError: apperrors.ErrorTypeNotFound},
		{name: "no cached document", doc: "", class: vo.PriorityNormal, wantError: apperrors.ErrorTypeNotFound},
		{name: "malformed document", doc: "{not json", class: vo.PriorityNormal, wantError: apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEstimatorFixture(1)
			f.cache.GetFunc = func(ctx context.Context, unit string) ([]byte, error) {
				assert.Equal(t, "UPA1", unit)
				if tt.doc == "" {
					return nil, nil
				}
				return []byte(tt.doc), nil
			}

			got, err := f.estimator().CachedMinutes(context.Background(), "und_atd1", tt.class)

			if tt.wantError != "" {
				appErr := apperrors.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, tt.wantError, appErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minutes)
		})
	}
}
