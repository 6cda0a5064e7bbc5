package hrsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hrops-platform/scheduling-service/internal/application"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

func testClient(t *testing.T, config Config) *Client {
	t.Helper()
	return NewClient(config, nil, logging.New(logging.DefaultConfig("test")))
}

func TestClientFetchEmployees(t *testing.T) {
	roster := []application.HREmployeeRecord{
		{ID: "HR-1", Name: "Maria Rossi", Status: "active", OrgUnit: "Milano Centro"},
		{ID: "HR-2", Name: "Luca Verdi", Status: "terminated"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/employees" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(roster)
	}))
	defer server.Close()

	client := testClient(t, Config{BaseURL: server.URL, APIKey: "secret"})
	records, err := client.FetchEmployees(context.Background())
	if err != nil {
		t.Fatalf("FetchEmployees failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "HR-1" || records[0].OrgUnit != "Milano Centro" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
}

func TestClientFetchEmployees_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream outage", http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(t, Config{BaseURL: server.URL})
	if _, err := client.FetchEmployees(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestClientFetchEmployees_MockMode(t *testing.T) {
	client := testClient(t, Config{MockEnabled: true})
	records, err := client.FetchEmployees(context.Background())
	if err != nil {
		t.Fatalf("FetchEmployees failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected fixture roster in mock mode")
	}
	for _, record := range records {
		if record.ID == "" || record.Name == "" {
			t.Errorf("incomplete fixture record: %+v", record)
		}
	}
}
