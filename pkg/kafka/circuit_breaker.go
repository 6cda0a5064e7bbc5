package kafka

import (
	"context"
	"log/slog"

	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	"github.com/hrops-platform/scheduling-service/pkg/resilience"
)

func breakerLogger(logger *logging.Logger) *slog.Logger {
	if logger != nil && logger.Logger != nil {
		return logger.Logger
	}
	return slog.Default()
}

// CircuitBreakerProducer guards publishes with a circuit breaker so a broker
// outage fails fast instead of blocking callers on write timeouts.
type CircuitBreakerProducer struct {
	producer       *InstrumentedProducer
	circuitBreaker *resilience.CircuitBreaker
	logger         *logging.Logger
}

// NewCircuitBreakerProducer wraps an InstrumentedProducer.
func NewCircuitBreakerProducer(producer *InstrumentedProducer, logger *logging.Logger) *CircuitBreakerProducer {
	config := resilience.DefaultCircuitBreakerConfig("kafka-producer")
	config.MaxRequests = 5
	if producer.metrics != nil {
		config.StateListener = resilience.MetricsListener(producer.metrics)
	}

	return &CircuitBreakerProducer{
		producer:       producer,
		circuitBreaker: resilience.NewCircuitBreaker(config, breakerLogger(logger)),
		logger:         logger,
	}
}

// PublishEvent publishes a CloudEvent through the breaker.
func (p *CircuitBreakerProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	_, err := p.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, topic, event)
	})
	return err
}

// Close closes the underlying producer.
func (p *CircuitBreakerProducer) Close() error {
	return p.producer.Close()
}

// Underlying returns the wrapped InstrumentedProducer.
func (p *CircuitBreakerProducer) Underlying() *InstrumentedProducer {
	return p.producer
}

// CircuitBreakerConsumer guards message handlers with a circuit breaker.
// Thresholds are looser than the producer's so transient handler failures do
// not stall consumption.
type CircuitBreakerConsumer struct {
	consumer       *InstrumentedConsumer
	circuitBreaker *resilience.CircuitBreaker
	logger         *logging.Logger
}

// NewCircuitBreakerConsumer wraps an InstrumentedConsumer.
func NewCircuitBreakerConsumer(consumer *InstrumentedConsumer, logger *logging.Logger) *CircuitBreakerConsumer {
	config := resilience.DefaultCircuitBreakerConfig("kafka-consumer")
	config.MaxRequests = 5
	config.FailureThreshold = 10
	config.SuccessThreshold = 3
	config.FailureRatioThreshold = 0.7
	config.MinRequestsToTrip = 20
	if consumer.metrics != nil {
		config.StateListener = resilience.MetricsListener(consumer.metrics)
	}

	return &CircuitBreakerConsumer{
		consumer:       consumer,
		circuitBreaker: resilience.NewCircuitBreaker(config, breakerLogger(logger)),
		logger:         logger,
	}
}

func (c *CircuitBreakerConsumer) protect(handler EventHandler) EventHandler {
	return func(ctx context.Context, event *cloudevents.CloudEvent) error {
		_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
			return nil, handler(ctx, event)
		})
		return err
	}
}

// Subscribe registers a breaker-protected handler for one event type.
func (c *CircuitBreakerConsumer) Subscribe(topic string, eventType string, handler EventHandler) {
	c.consumer.Subscribe(topic, eventType, c.protect(handler))
}

// SubscribeAll registers a breaker-protected handler for every event type.
func (c *CircuitBreakerConsumer) SubscribeAll(topic string, handler EventHandler) {
	c.consumer.SubscribeAll(topic, c.protect(handler))
}

// Start runs the consumer loop until ctx is cancelled. The breaker guards the
// per-message handlers, not the loop itself.
func (c *CircuitBreakerConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close closes the underlying consumer.
func (c *CircuitBreakerConsumer) Close() error {
	return c.consumer.Close()
}

// SetConsumerLag updates the lag gauge for a topic partition.
func (c *CircuitBreakerConsumer) SetConsumerLag(topic string, partition int, lag int64) {
	c.consumer.SetConsumerLag(topic, partition, lag)
}

// Underlying returns the wrapped InstrumentedConsumer.
func (c *CircuitBreakerConsumer) Underlying() *InstrumentedConsumer {
	return c.consumer
}

// NewProductionProducer assembles the full producer stack: base producer,
// instrumentation, circuit breaker.
func NewProductionProducer(config *Config, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerProducer {
	base := NewProducer(config)
	return NewCircuitBreakerProducer(NewInstrumentedProducer(base, m, logger), logger)
}

// NewProductionConsumer assembles the full consumer stack: base consumer,
// instrumentation, circuit breaker.
func NewProductionConsumer(config *Config, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerConsumer {
	base := NewConsumer(config, logger.Logger)
	return NewCircuitBreakerConsumer(NewInstrumentedConsumer(base, m, logger), logger)
}
