package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/hrops-platform/scheduling-service/pkg/metrics"
)

// ErrCircuitOpen is returned to callers that probe breaker state before executing.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds the trip and recovery settings for one breaker.
type CircuitBreakerConfig struct {
	Name                  string
	MaxRequests           uint32        // Requests allowed through in half-open state
	Interval              time.Duration // Window for clearing failure counts (0 = never clear)
	Timeout               time.Duration // Wait before transitioning from open to half-open
	FailureThreshold      uint32        // Consecutive failures that trip the circuit
	SuccessThreshold      uint32        // Successes needed in half-open to close
	FailureRatioThreshold float64       // Failure ratio that trips (0.5 = 50%)
	MinRequestsToTrip     uint32        // Minimum requests before the ratio is evaluated

	// StateListener, if set, observes every state transition after it is
	// logged. Used to feed breaker gauges.
	StateListener func(name string, from, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the shared defaults for a named breaker.
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:                  name,
		MaxRequests:           DefaultMaxRequests,
		Interval:              DefaultInterval,
		Timeout:               DefaultTimeout,
		FailureThreshold:      DefaultFailureThreshold,
		SuccessThreshold:      DefaultSuccessThreshold,
		FailureRatioThreshold: DefaultFailureRatioThreshold,
		MinRequestsToTrip:     DefaultMinRequestsToTrip,
	}
}

// MetricsListener feeds breaker transitions into the shared gauges.
// Gauge encoding: closed 0, half-open 1, open 2.
func MetricsListener(m *metrics.Metrics) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		var state int
		switch to {
		case gobreaker.StateHalfOpen:
			state = 1
		case gobreaker.StateOpen:
			state = 2
		}
		m.SetCircuitBreakerState(name, state)
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}
}

// CircuitBreaker wraps gobreaker with state-change logging.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *slog.Logger
}

// NewCircuitBreaker builds a breaker that trips on either consecutive failures
// or a failure ratio over a minimum request count.
func NewCircuitBreaker(config *CircuitBreakerConfig, logger *slog.Logger) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= config.FailureThreshold {
				return true
			}

			if counts.Requests >= config.MinRequestsToTrip {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= config.FailureRatioThreshold
			}

			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			if config.StateListener != nil {
				config.StateListener(name, from, to)
			}
		},
	}

	return &CircuitBreaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		name:   config.Name,
		logger: logger,
	}
}

// Execute runs fn through the breaker, translating gobreaker sentinel errors
// into caller-facing unavailability errors.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	if err == gobreaker.ErrOpenState {
		c.logger.Warn("Circuit breaker is open", "name", c.name)
		return nil, fmt.Errorf("service unavailable: circuit breaker open for %s", c.name)
	}

	if err == gobreaker.ErrTooManyRequests {
		c.logger.Warn("Circuit breaker: too many requests", "name", c.name)
		return nil, fmt.Errorf("service unavailable: too many requests for %s", c.name)
	}

	return result, err
}

// State returns the breaker's current state.
func (c *CircuitBreaker) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the breaker's name.
func (c *CircuitBreaker) Name() string {
	return c.name
}
