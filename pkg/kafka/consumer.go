package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// EventHandler processes one decoded CloudEvent. Returning an error keeps
// the message uncommitted so the group redelivers it.
type EventHandler func(ctx context.Context, event *cloudevents.CloudEvent) error

// wildcardType matches every event type on a topic.
const wildcardType = "*"

// Consumer reads CloudEvents from Kafka topics and dispatches them to
// registered handlers by event type.
type Consumer struct {
	config   *Config
	readers  map[string]*kafka.Reader
	handlers map[string]map[string]EventHandler
	logger   *slog.Logger
}

func NewConsumer(config *Config, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		config:   config,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]map[string]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type on a topic. Must be
// called before Start; the handler map is not mutated safely afterwards.
func (c *Consumer) Subscribe(topic string, eventType string, handler EventHandler) {
	if c.handlers[topic] == nil {
		c.handlers[topic] = make(map[string]EventHandler)
	}
	c.handlers[topic][eventType] = handler
}

// SubscribeAll registers a catch-all handler for a topic.
func (c *Consumer) SubscribeAll(topic string, handler EventHandler) {
	c.Subscribe(topic, wildcardType, handler)
}

func (c *Consumer) readerFor(topic string) *kafka.Reader {
	if reader, ok := c.readers[topic]; ok {
		return reader
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.config.Brokers,
		GroupID:        c.config.ConsumerGroup,
		Topic:          topic,
		MinBytes:       c.config.MinBytes,
		MaxBytes:       c.config.MaxBytes,
		MaxWait:        c.config.MaxWait,
		CommitInterval: c.config.CommitTimeout,
	})
	c.readers[topic] = reader
	return reader
}

// Start launches one consume loop per subscribed topic and blocks until
// the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for topic := range c.handlers {
		go c.consumeTopic(ctx, topic)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) consumeTopic(ctx context.Context, topic string) {
	reader := c.readerFor(topic)
	c.logger.Info("consumer started", "topic", topic, "group", c.config.ConsumerGroup)

	for ctx.Err() == nil {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("fetch failed", "topic", topic, "error", err)
			continue
		}
		c.processMessage(ctx, reader, topic, msg)
	}
	c.logger.Info("consumer stopped", "topic", topic)
}

// processMessage decodes, dispatches and commits a single message.
// Decode failures are committed so a poison message cannot wedge the
// partition; handler failures are not, so the message is redelivered.
func (c *Consumer) processMessage(ctx context.Context, reader *kafka.Reader, topic string, msg kafka.Message) {
	event, err := decodeMessage(msg)
	if err != nil {
		c.logger.Error("undecodable message skipped", "topic", topic, "offset", msg.Offset, "error", err)
		c.commit(ctx, reader, topic, msg)
		return
	}

	if err := c.dispatch(ctx, topic, event); err != nil {
		c.logger.Error("handler failed",
			"topic", topic,
			"eventType", event.Type,
			"eventId", event.ID,
			"error", err,
		)
		return
	}

	c.commit(ctx, reader, topic, msg)
}

func (c *Consumer) commit(ctx context.Context, reader *kafka.Reader, topic string, msg kafka.Message) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit failed", "topic", topic, "offset", msg.Offset, "error", err)
	}
}

// decodeMessage unmarshals the CloudEvent body and lifts the hrops
// extension headers back onto the event. Headers win over body fields
// because the producer writes them last.
func decodeMessage(msg kafka.Message) (*cloudevents.CloudEvent, error) {
	var event cloudevents.CloudEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	for _, header := range msg.Headers {
		switch header.Key {
		case "ce-hropscorrelationid":
			event.CorrelationID = string(header.Value)
		case "ce-hropsstoreid":
			event.StoreID = string(header.Value)
		case "ce-hropsweekstart":
			event.WeekStart = string(header.Value)
		}
	}
	return &event, nil
}

// dispatch picks the type-specific handler, falling back to the topic's
// catch-all. Unhandled types are dropped with a warning rather than
// redelivered forever.
func (c *Consumer) dispatch(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	handlers, ok := c.handlers[topic]
	if !ok {
		return fmt.Errorf("no handlers registered for topic %s", topic)
	}

	if event.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, event.CorrelationID)
	}

	if handler, ok := handlers[event.Type]; ok {
		return handler(ctx, event)
	}
	if handler, ok := handlers[wildcardType]; ok {
		return handler(ctx, event)
	}

	c.logger.Warn("no handler for event type", "topic", topic, "eventType", event.Type)
	return nil
}

// Close closes every reader, returning the last error seen.
func (c *Consumer) Close() error {
	var lastErr error
	for topic, reader := range c.readers {
		if err := reader.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close reader for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
