package mongodb

import (
	"context"
	"log/slog"

	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	"github.com/hrops-platform/scheduling-service/pkg/resilience"
	"go.mongodb.org/mongo-driver/mongo"
)

// CircuitBreakerClient guards connection-level operations (health checks and
// transactions) with a circuit breaker so a struggling database sheds load
// instead of piling up blocked callers. Per-collection reads and writes go
// through the InstrumentedClient directly.
type CircuitBreakerClient struct {
	client         *InstrumentedClient
	circuitBreaker *resilience.CircuitBreaker
	logger         *logging.Logger
}

// NewCircuitBreakerClient wraps an InstrumentedClient.
func NewCircuitBreakerClient(client *InstrumentedClient, logger *logging.Logger) *CircuitBreakerClient {
	config := resilience.DefaultCircuitBreakerConfig("mongodb")
	config.MaxRequests = 5
	if client.metrics != nil {
		config.StateListener = resilience.MetricsListener(client.metrics)
	}

	var slogLogger *slog.Logger
	if logger != nil && logger.Logger != nil {
		slogLogger = logger.Logger
	} else {
		slogLogger = slog.Default()
	}

	return &CircuitBreakerClient{
		client:         client,
		circuitBreaker: resilience.NewCircuitBreaker(config, slogLogger),
		logger:         logger,
	}
}

// Database returns the raw database handle.
func (c *CircuitBreakerClient) Database() *mongo.Database {
	return c.client.Database()
}

// Client returns the raw driver client.
func (c *CircuitBreakerClient) Client() *mongo.Client {
	return c.client.Client()
}

// Close disconnects the underlying client.
func (c *CircuitBreakerClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck pings the server through the breaker. Readiness probes fail fast
// while the circuit is open.
func (c *CircuitBreakerClient) HealthCheck(ctx context.Context) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.HealthCheck(ctx)
	})
	return err
}

// WithTransaction runs fn inside a transaction through the breaker.
func (c *CircuitBreakerClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.WithTransaction(ctx, fn)
	})
	return err
}

// RawClient returns the wrapped InstrumentedClient for repository wiring.
func (c *CircuitBreakerClient) RawClient() *InstrumentedClient {
	return c.client
}

// NewProductionClient connects to MongoDB and assembles the full stack:
// base client, instrumentation, circuit breaker.
func NewProductionClient(ctx context.Context, config *Config, m *metrics.Metrics, logger *logging.Logger) (*CircuitBreakerClient, error) {
	baseClient, err := NewClient(ctx, config)
	if err != nil {
		return nil, err
	}

	instrumented := NewInstrumentedClient(baseClient, m, logger)
	return NewCircuitBreakerClient(instrumented, logger), nil
}
