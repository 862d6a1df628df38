package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/db/models"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	"github.com/medimall/medimall-backend/pkg/outbox/registry"
)

const (
	publishTimeout = 15 * time.Second
	maxIdleBackoff = 10 * time.Second
	jitterWindow   = 250 * time.Millisecond
	sourceAttr     = "medimall-api"
)

type outcome string

const (
	outcomePublished outcome = "published"
	outcomeRetry     outcome = "retry"
	outcomeParked    outcome = "parked"
)

type txRunner interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type topicSource interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// sender hides the concrete Pub/Sub publisher so delivery can be faked.
type sender func(ctx context.Context, topic string, msg *gcppubsub.Message) error

type RelayParams struct {
	Outbox   config.OutboxConfig
	Logger   *logger.Logger
	DB       txRunner
	PubSub   topicSource
	Events   eventStore
	Registry resolver
	Metrics  *metrics.OutboxMetrics
	Send     sender
}

// Relay moves committed payment outcomes from outbox_events to Pub/Sub.
// Rows are claimed with SKIP LOCKED so several relays can share the table.
type Relay struct {
	logg        *logger.Logger
	db          txRunner
	pubsub      topicSource
	events      eventStore
	registry    resolver
	metrics     *metrics.OutboxMetrics
	send        sender
	batchSize   int
	maxAttempts int
	interval    time.Duration
}

func NewRelay(p RelayParams) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	case p.DB == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client is required")
	case p.PubSub == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pubsub client is required")
	case p.Events == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox repository is required")
	case p.Registry == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event registry is required")
	}

	r := &Relay{
		logg:        p.Logger,
		db:          p.DB,
		pubsub:      p.PubSub,
		events:      p.Events,
		registry:    p.Registry,
		metrics:     p.Metrics,
		send:        p.Send,
		batchSize:   p.Outbox.BatchSize,
		maxAttempts: p.Outbox.MaxAttempts,
		interval:    p.Outbox.PollInterval(),
	}
	if r.batchSize <= 0 {
		r.batchSize = 50
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = 10
	}
	if r.send == nil {
		r.send = r.publish
	}
	return r, nil
}

// Run drains until ctx is canceled. Empty polls and failed batches back off
// exponentially up to maxIdleBackoff.
func (r *Relay) Run(ctx context.Context) error {
	for _, dep := range []struct {
		name string
		ping func(context.Context) error
	}{{"database", r.db.Ping}, {"pubsub", r.pubsub.Ping}} {
		if err := dep.ping(ctx); err != nil {
			r.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	wait := r.interval
	for {
		if err := ctx.Err(); err != nil {
			r.logg.Info(ctx, "outbox relay context canceled")
			return err
		}

		n, err := r.drain(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox relay batch error", err)
			wait = backoff(wait, r.interval)
		case n > 0:
			wait = r.interval
			continue
		default:
			wait = r.interval
		}

		if err := sleep(ctx, wait+jitter()); err != nil {
			return err
		}
	}
}

// drain claims one batch and settles every row in it. It reports how many
// rows were claimed.
func (r *Relay) drain(ctx context.Context) (int, error) {
	claimed := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.events.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}
		claimed = len(rows)
		for _, row := range rows {
			if err := r.settle(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

// settle delivers one row and records the outcome. Only bookkeeping failures
// are returned; delivery failures are written back to the row.
func (r *Relay) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID,
		"attempt_count":  row.AttemptCount,
	}
	result, cause := r.deliver(ctx, row, fields)
	logCtx := r.logg.WithFields(ctx, fields)

	switch result {
	case outcomePublished:
		if err := r.events.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		r.metrics.IncPublish(string(row.EventType), metrics.OutcomeSuccess)
		r.logg.Info(logCtx, "outbox event published")
	case outcomeRetry:
		if err := r.events.MarkFailedTx(tx, row.ID, cause); err != nil {
			return fmt.Errorf("mark failure %s: %w", row.ID, err)
		}
		r.metrics.IncPublish(string(row.EventType), metrics.OutcomeFailure)
		r.logg.Warn(r.logg.WithField(logCtx, "error", cause.Error()), "outbox publish failed")
	case outcomeParked:
		if err := r.events.MarkTerminalTx(tx, row.ID, cause, r.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", row.ID, err)
		}
		r.metrics.IncPublish(string(row.EventType), metrics.OutcomeRejected)
		r.logg.Warn(r.logg.WithField(logCtx, "error", cause.Error()), "outbox event parked for operator replay")
	}
	return nil
}

func (r *Relay) deliver(ctx context.Context, row models.OutboxEvent, fields map[string]any) (outcome, error) {
	resolved, err := r.registry.Resolve(row)
	if err != nil {
		fields["park_reason"] = "unresolvable"
		return outcomeParked, err
	}
	topic := resolved.Descriptor.Topic
	fields["topic"] = topic
	fields["event_id"] = resolved.Envelope.EventID

	msg := &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID,
			"schema_version": strconv.Itoa(resolved.Envelope.Version),
			"occurred_at":    resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
			"source":         sourceAttr,
		},
	}

	sendCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = r.send(sendCtx, topic, msg)
	if err == nil {
		return outcomePublished, nil
	}

	var fatal registry.NonRetryableError
	if errors.As(err, &fatal) {
		fields["park_reason"] = "non_retryable"
		return outcomeParked, err
	}
	if row.AttemptCount+1 >= r.maxAttempts {
		fields["park_reason"] = "max_attempts"
		return outcomeParked, fmt.Errorf("max publish attempts reached: %w", err)
	}
	fields["attempt_count"] = row.AttemptCount + 1
	return outcomeRetry, err
}

func (r *Relay) publish(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	pub := r.pubsub.Publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	_, err := pub.Publish(ctx, msg).Get(ctx)
	return err
}

func backoff(current, base time.Duration) time.Duration {
	if current < base {
		current = base
	}
	return min(current*2, maxIdleBackoff)
}

func jitter() time.Duration {
	return rand.N(jitterWindow)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
