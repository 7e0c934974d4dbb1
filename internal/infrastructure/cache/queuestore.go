package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"triage/internal/domain/triage"
	"triage/internal/shared/logger"
)

const (
	queueKeyPrefix        = "queue:zset:"
	queueCounterKeyPrefix = "queue:priorityCounter:"
	snapshotKeyPrefix     = "atendimento:"

	// SnapshotTTL bounds how long a ticket snapshot outlives its last write.
	SnapshotTTL = 7 * 24 * time.Hour
)

// prioritizeScript bumps the unit counter and moves the ticket to -counter
// in one step, so concurrent prioritizations never share a score.
// KEYS[1] = counter key, KEYS[2] = queue key, ARGV[1] = ticket id
var prioritizeScript = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
redis.call('ZADD', KEYS[2], -c, ARGV[1])
return c
`)

// TicketSnapshot is the denormalized copy of a ticket kept for fast reads.
type TicketSnapshot struct {
	Unit         string `json:"unidadeAtendimento"`
	TicketID     int64  `json:"nrSeqAtendimento"`
	TicketNumber int    `json:"nrSenhaAtendimento"`
	PatientID    int64  `json:"codCadastroSusPaciente"`
	PriorityCode int    `json:"codTipoPriorizacao"`
	StateCode    int    `json:"codEstadoSenha"`
}

// QueueStore keeps one sorted set of ticket ids per unit. Lower scores are
// served sooner.
type QueueStore struct {
	client *redis.Client
	logger logger.Interface
}

func NewQueueStore(client *redis.Client, log logger.Interface) *QueueStore {
	return &QueueStore{client: client, logger: log}
}

func queueKey(unit string) string {
	return queueKeyPrefix + unit
}

func queueCounterKey(unit string) string {
	return queueCounterKeyPrefix + unit
}

func snapshotKey(unit string, ticketID int64) string {
	return fmt.Sprintf("%s%s:%d", snapshotKeyPrefix, unit, ticketID)
}

func member(ticketID int64) string {
	return strconv.FormatInt(ticketID, 10)
}

// Enqueue inserts the ticket or updates its score.
func (s *QueueStore) Enqueue(ctx context.Context, unit string, ticketID int64, score float64) error {
	err := s.client.ZAdd(ctx, queueKey(unit), redis.Z{Score: score, Member: member(ticketID)}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue ticket %d in %s: %w", ticketID, unit, err)
	}
	return nil
}

// Remove drops the ticket from the queue and deletes its snapshot.
func (s *QueueStore) Remove(ctx context.Context, unit string, ticketID int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, queueKey(unit), member(ticketID))
		pipe.Del(ctx, snapshotKey(unit, ticketID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove ticket %d from %s: %w", ticketID, unit, err)
	}
	return nil
}

// Prioritize moves the ticket ahead of every ticket not prioritized after it
// and returns its new score. Among prioritized tickets the latest one sorts first.
func (s *QueueStore) Prioritize(ctx context.Context, unit string, ticketID int64) (float64, error) {
	counter, err := prioritizeScript.Run(ctx, s.client,
		[]string{queueCounterKey(unit), queueKey(unit)}, member(ticketID)).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to prioritize ticket %d in %s: %w", ticketID, unit, err)
	}
	return -float64(counter), nil
}

// CountAhead counts members scored strictly below score. Scores are
// integral, so the inclusive bound score-0.5 is exact.
func (s *QueueStore) CountAhead(ctx context.Context, unit string, score float64) (int64, error) {
	max := strconv.FormatFloat(score-0.5, 'f', -1, 64)
	n, err := s.client.ZCount(ctx, queueKey(unit), "-inf", max).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets ahead in %s: %w", unit, err)
	}
	return n, nil
}

// Score returns the live score of the ticket, or nil when it is not queued.
func (s *QueueStore) Score(ctx context.Context, unit string, ticketID int64) (*float64, error) {
	score, err := s.client.ZScore(ctx, queueKey(unit), member(ticketID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read score of ticket %d in %s: %w", ticketID, unit, err)
	}
	return &score, nil
}

// SaveSnapshot writes the ticket snapshot. Failures are logged and swallowed.
func (s *QueueStore) SaveSnapshot(ctx context.Context, unit string, ticket *triage.Ticket) {
	snap := TicketSnapshot{
		Unit:         unit,
		TicketID:     ticket.ID(),
		TicketNumber: ticket.Number(),
		PatientID:    ticket.PatientID(),
		PriorityCode: ticket.Priority().Code(),
		StateCode:    ticket.State().Code(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warnw("failed to encode ticket snapshot", "unit", unit, "ticket_id", ticket.ID(), "error", err)
		return
	}
	if err := s.client.Set(ctx, snapshotKey(unit, ticket.ID()), data, SnapshotTTL).Err(); err != nil {
		s.logger.Warnw("failed to save ticket snapshot", "unit", unit, "ticket_id", ticket.ID(), "error", err)
	}
}
