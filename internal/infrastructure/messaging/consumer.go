// Package messaging feeds broker messages to the event processor.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"

	"triage/internal/application/events"
	"triage/internal/shared/config"
	"triage/internal/shared/logger"
	"triage/internal/shared/utils/logutil"
)

const (
	defaultBaseRetryInterval = 500 * time.Millisecond
	maxLoggedPayloadBytes    = 512
)

// MessageSource is the part of *kafka.Reader the consumer needs.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EnvelopeProcessor applies one decoded envelope.
type EnvelopeProcessor interface {
	Process(ctx context.Context, env *events.Envelope) error
}

// Consumer reads one message at a time and commits its offset only once the
// message was applied or found undecodable. Processing failures are retried
// in place with capped exponential backoff.
type Consumer struct {
	source       MessageSource
	processor    EnvelopeProcessor
	logger       logger.Interface
	baseInterval time.Duration
	maxInterval  time.Duration
}

// NewKafkaReader builds the group reader for the configured topic.
func NewKafkaReader(cfg *config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
}

func NewConsumer(source MessageSource, processor EnvelopeProcessor, maxRetryInterval time.Duration, log logger.Interface) *Consumer {
	return &Consumer{
		source:       source,
		processor:    processor,
		logger:       log.Named("messaging.consumer"),
		baseInterval: defaultBaseRetryInterval,
		maxInterval:  maxRetryInterval,
	}
}

// Run consumes until ctx is cancelled, which is not an error. It returns an
// error only when the source fails for another reason.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Infow("consumer started")
	defer c.logger.Infow("consumer stopped")

	for {
		msg, err := c.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Errorw("failed to fetch message", "error", err)
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if !c.handle(ctx, msg) {
			return nil
		}

		if err := c.source.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// the message will be redelivered and skipped by the idempotency guard
			c.logger.Errorw("failed to commit offset",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// handle reports whether msg is done and its offset may be committed. It
// returns false only when ctx was cancelled before msg was applied.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)

	env, err := events.Decode(msg.Value)
	if err != nil {
		log.Warnw("skipping undecodable event",
			"reason", err.Error(),
			"raw", logutil.TruncateForLog(string(msg.Value), maxLoggedPayloadBytes),
		)
		return true
	}

	backoff := retry.WithCappedDuration(c.maxInterval, retry.NewExponential(c.baseInterval))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.processor.Process(ctx, env); err != nil {
			log.Warnw("event processing failed, retrying",
				"event_id", env.ID.String(),
				"event_type", env.Type.String(),
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return true
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorw("event processing abandoned", "event_id", env.ID.String(), "error", err)
	}
	return false
}
