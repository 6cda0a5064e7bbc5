package hrsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/application"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	"github.com/hrops-platform/scheduling-service/pkg/resilience"
)

// Config holds the HR directory connection settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MockEnabled bool
}

// DefaultConfig returns the default HR directory settings
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// Client calls the external HR directory over HTTP. Calls go through a
// circuit breaker so a flapping HR system cannot stall sync runs.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

var _ application.HRDirectoryClient = (*Client)(nil)

// NewClient creates a new HR directory client. A nil m disables breaker
// state metrics.
func NewClient(config Config, m *metrics.Metrics, logger *logging.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	breakerConfig := resilience.DefaultCircuitBreakerConfig("hr-directory")
	if m != nil {
		breakerConfig.StateListener = resilience.MetricsListener(m)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    resilience.NewCircuitBreaker(breakerConfig, logger.Logger),
		logger:     logger,
	}
}

// FetchEmployees retrieves the current employee roster from the HR
// directory. In mock mode a fixed roster is returned so local
// environments work without the external system.
func (c *Client) FetchEmployees(ctx context.Context) ([]application.HREmployeeRecord, error) {
	if c.config.MockEnabled {
		c.logger.Info("HR directory mock mode enabled, returning fixture roster")
		return mockRoster(), nil
	}

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.fetchEmployees(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]application.HREmployeeRecord), nil
}

func (c *Client) fetchEmployees(ctx context.Context) ([]application.HREmployeeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/v1/employees", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hr directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("hr directory returned status %d: %s", resp.StatusCode, string(body))
	}

	var records []application.HREmployeeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode hr directory response: %w", err)
	}
	return records, nil
}

// mockRoster mirrors the shape the real directory returns.
func mockRoster() []application.HREmployeeRecord {
	return []application.HREmployeeRecord{
		{
			ID:       "HR-1001",
			Name:     "Maria Rossi",
			Email:    "maria.rossi@example.com",
			Position: "Sales Assistant",
			HireDate: "2022-04-01",
			Status:   "active",
			OrgUnit:  "Milano Centro",
		},
		{
			ID:       "HR-1002",
			Name:     "Giulia Esposito",
			Email:    "giulia.esposito@example.com",
			Position: "Cashier",
			HireDate: "2023-09-18",
			Status:   "active",
			OrgUnit:  "Roma Termini",
		},
		{
			ID:       "HR-1003",
			Name:     "Paolo Ferrari",
			Email:    "paolo.ferrari@example.com",
			Position: "Store Manager",
			HireDate: "2019-01-07",
			Status:   "active",
			OrgUnit:  "Milano Centro",
		},
	}
}
