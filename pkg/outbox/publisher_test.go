package outbox

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	sharedtesting "github.com/hrops-platform/scheduling-service/pkg/testing"
)

type memoryOutboxRepo struct {
	mu     sync.Mutex
	events map[string]*OutboxEvent
}

func newMemoryOutboxRepo() *memoryOutboxRepo {
	return &memoryOutboxRepo{events: make(map[string]*OutboxEvent)}
}

func (r *memoryOutboxRepo) Save(ctx context.Context, event *OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *memoryOutboxRepo) SaveAll(ctx context.Context, events []*OutboxEvent) error {
	for _, event := range events {
		if err := r.Save(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryOutboxRepo) FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unpublished []*OutboxEvent
	for _, event := range r.events {
		if event.PublishedAt == nil && len(unpublished) < limit {
			unpublished = append(unpublished, event)
		}
	}
	return unpublished, nil
}

func (r *memoryOutboxRepo) MarkPublished(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	now := time.Now()
	event.PublishedAt = &now
	return nil
}

func (r *memoryOutboxRepo) IncrementRetry(ctx context.Context, eventID string, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	event.RetryCount++
	event.LastError = errorMsg
	return nil
}

func (r *memoryOutboxRepo) DeletePublished(ctx context.Context, olderThan int64) error {
	return nil
}

func (r *memoryOutboxRepo) GetByID(ctx context.Context, eventID string) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[eventID], nil
}

func (r *memoryOutboxRepo) FindByAggregateID(ctx context.Context, aggregateID string) ([]*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*OutboxEvent
	for _, event := range r.events {
		if event.AggregateID == aggregateID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (r *memoryOutboxRepo) retryCount(eventID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event, ok := r.events[eventID]; ok {
		return event.RetryCount
	}
	return 0
}

func (r *memoryOutboxRepo) publishedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if event.PublishedAt != nil {
			count++
		}
	}
	return count
}

type captureProducer struct {
	mu     sync.Mutex
	topics []string
	types  []string
	failN  int
}

func (p *captureProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failN > 0 {
		p.failN--
		return fmt.Errorf("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.types = append(p.types, event.Type)
	return nil
}

func (p *captureProducer) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.topics)
}

func seedOutboxEvent(t *testing.T, repo Repository, shiftID string) *OutboxEvent {
	t.Helper()
	factory := cloudevents.NewEventFactory("/scheduling-service")
	cloudEvent := factory.CreateEvent(context.Background(), cloudevents.ShiftCreated, shiftID, map[string]string{"shiftId": shiftID})
	event, err := NewOutboxEventFromCloudEvent(shiftID, "shift", "hrops.scheduling.events", cloudEvent)
	if err != nil {
		t.Fatalf("failed to build outbox event: %v", err)
	}
	if err := repo.Save(context.Background(), event); err != nil {
		t.Fatalf("failed to save outbox event: %v", err)
	}
	return event
}

func TestPublisher_PublishesPendingEvents(t *testing.T) {
	repo := newMemoryOutboxRepo()
	producer := &captureProducer{}
	logger := logging.New(logging.DefaultConfig("test"))

	publisher := NewPublisher(repo, producer, logger, nil, &PublisherConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	seedOutboxEvent(t, repo, "SH-1")
	seedOutboxEvent(t, repo, "SH-2")

	ctx, cancel := sharedtesting.CreateTestContext(5 * time.Second)
	defer cancel()

	if err := publisher.Start(ctx); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}
	if !publisher.IsRunning() {
		t.Fatal("expected publisher to be running")
	}

	sharedtesting.AssertEventually(t, func() bool {
		return producer.published() == 2 && repo.publishedCount() == 2
	}, 2*time.Second, "both events published and marked")

	if err := publisher.Stop(); err != nil {
		t.Fatalf("failed to stop publisher: %v", err)
	}

	stats := publisher.Stats()
	if stats["published"] != 2 {
		t.Fatalf("expected 2 published, got %d", stats["published"])
	}
	if stats["failed"] != 0 {
		t.Fatalf("expected 0 failed, got %d", stats["failed"])
	}
	for _, topic := range producer.topics {
		if topic != "hrops.scheduling.events" {
			t.Fatalf("unexpected topic %s", topic)
		}
	}
}

func TestPublisher_RetriesFailedEvents(t *testing.T) {
	repo := newMemoryOutboxRepo()
	producer := &captureProducer{failN: 2}
	logger := logging.New(logging.DefaultConfig("test"))

	publisher := NewPublisher(repo, producer, logger, nil, &PublisherConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	event := seedOutboxEvent(t, repo, "SH-9")

	ctx, cancel := sharedtesting.CreateTestContext(5 * time.Second)
	defer cancel()

	if err := publisher.Start(ctx); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}

	// The first two polls fail, the third succeeds.
	sharedtesting.AssertEventually(t, func() bool {
		return repo.publishedCount() == 1
	}, 2*time.Second, "event published after retries")

	if err := publisher.Stop(); err != nil {
		t.Fatalf("failed to stop publisher: %v", err)
	}

	if got := repo.retryCount(event.ID); got != 2 {
		t.Fatalf("expected 2 retries, got %d", got)
	}
	stored, err := repo.GetByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("failed to load event: %v", err)
	}
	if stored.LastError == "" {
		t.Fatal("expected last error to be recorded")
	}
}

func TestPublisher_StartTwiceFails(t *testing.T) {
	repo := newMemoryOutboxRepo()
	logger := logging.New(logging.DefaultConfig("test"))
	publisher := NewPublisher(repo, &captureProducer{}, logger, nil, nil)

	ctx, cancel := sharedtesting.CreateTestContext(time.Second)
	defer cancel()

	if err := publisher.Start(ctx); err != nil {
		t.Fatalf("failed to start publisher: %v", err)
	}
	defer publisher.Stop()

	if err := publisher.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
}
