package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
)

// EventProducer publishes CloudEvents to a topic. Satisfied by the
// instrumented and circuit-breaking Kafka producers.
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error
}

// Publisher polls the outbox and forwards pending events to the broker.
// Events stay in the outbox until a publish succeeds, so delivery is
// at-least-once and consumers must tolerate duplicates.
type Publisher struct {
	repo      Repository
	producer  EventProducer
	logger    *logging.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}

	publishedCnt int
	failedCnt    int
}

// PublisherConfig sets the poll cadence and per-poll batch size.
type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultPublisherConfig polls every second in batches of 100.
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	}
}

// NewPublisher builds a publisher. A nil config uses the defaults and a nil
// metrics disables metric recording.
func NewPublisher(
	repo Repository,
	producer EventProducer,
	logger *logging.Logger,
	metrics *metrics.Metrics,
	config *PublisherConfig,
) *Publisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	return &Publisher{
		repo:      repo,
		producer:  producer,
		logger:    logger,
		metrics:   metrics,
		interval:  config.PollInterval,
		batchSize: config.BatchSize,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the poll loop. Starting twice is an error.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("starting outbox publisher", "interval", p.interval, "batchSize", p.batchSize)

	go p.run(ctx)
	return nil
}

// Stop signals the loop and blocks until it drains.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher not running")
	}
	p.mu.Unlock()

	close(p.stopCh)
	<-p.stoppedCh

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("outbox publisher stopped", "published", p.publishedCnt, "failed", p.failedCnt)
	return nil
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.stoppedCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.drainBatch(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			p.logger.Info("outbox publisher context cancelled")
			return
		}
	}
}

// drainBatch publishes one batch of pending events. Failures bump the
// event's retry count and leave it pending for the next poll.
func (p *Publisher) drainBatch(ctx context.Context) {
	events, err := p.repo.FindUnpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.WithError(err).Error("failed to find unpublished events")
		return
	}

	if p.metrics != nil {
		p.metrics.SetOutboxPending(len(events))
	}
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		start := time.Now()
		err := p.publishOne(ctx, event)
		elapsed := time.Since(start)

		if p.metrics != nil {
			p.metrics.RecordOutboxPublish(event.EventType, err == nil, elapsed)
		}

		if err != nil {
			p.recordFailure(ctx, event, err)
			continue
		}
		p.recordSuccess(ctx, event, elapsed)
	}
}

func (p *Publisher) publishOne(ctx context.Context, event *OutboxEvent) error {
	cloudEvent, err := event.ToCloudEvent()
	if err != nil {
		return fmt.Errorf("failed to convert to CloudEvent: %w", err)
	}
	if err := p.producer.PublishEvent(ctx, event.Topic, cloudEvent); err != nil {
		return fmt.Errorf("failed to publish to Kafka: %w", err)
	}
	return nil
}

func (p *Publisher) recordSuccess(ctx context.Context, event *OutboxEvent, elapsed time.Duration) {
	p.publishedCnt++

	if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
		// The event will be republished on the next poll. Consumers
		// already have to deduplicate, so this only costs a duplicate.
		p.logger.WithError(err).Error("failed to mark event as published", "eventId", event.ID)
	}

	p.logger.Info("published event from outbox",
		"eventId", event.ID,
		"eventType", event.EventType,
		"topic", event.Topic,
		"aggregateId", event.AggregateID,
		"duration", elapsed,
	)
}

func (p *Publisher) recordFailure(ctx context.Context, event *OutboxEvent, publishErr error) {
	p.failedCnt++

	p.logger.WithError(publishErr).Error("failed to publish event",
		"eventId", event.ID,
		"eventType", event.EventType,
		"aggregateId", event.AggregateID,
	)

	if err := p.repo.IncrementRetry(ctx, event.ID, publishErr.Error()); err != nil {
		p.logger.WithError(err).Error("failed to increment retry count", "eventId", event.ID)
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxRetry(event.EventType)
	}
}

// IsRunning reports whether the poll loop is active.
func (p *Publisher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats returns published and failed counts. Reliable only after Stop,
// since the loop increments them without the lock.
func (p *Publisher) Stats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]int{
		"published": p.publishedCnt,
		"failed":    p.failedCnt,
	}
}
