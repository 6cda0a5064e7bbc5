package outbox

import "context"

// Repository persists outbox events alongside aggregate writes and feeds the Publisher.
type Repository interface {
	// Save stores a single outbox event.
	Save(ctx context.Context, event *OutboxEvent) error

	// SaveAll stores multiple outbox events in one operation, typically inside
	// the same transaction as the aggregate write.
	SaveAll(ctx context.Context, events []*OutboxEvent) error

	// FindUnpublished returns pending events up to limit, oldest first.
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkPublished records that an event reached the broker.
	MarkPublished(ctx context.Context, eventID string) error

	// IncrementRetry bumps the retry count and records the last publish error.
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error

	// DeletePublished removes published events older than olderThan seconds.
	DeletePublished(ctx context.Context, olderThan int64) error

	// GetByID looks up a single event.
	GetByID(ctx context.Context, eventID string) (*OutboxEvent, error)

	// FindByAggregateID returns every event recorded for an aggregate.
	FindByAggregateID(ctx context.Context, aggregateID string) ([]*OutboxEvent, error)
}
