package jobclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunRollover_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/internal/jobs/rollover" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing or wrong API key header")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"year":2025}` {
			t.Errorf("unexpected body: %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"job_run": map[string]any{"id": "run-1", "kind": "rollover", "year": 2025, "trigger": "manual", "status": "succeeded", "created": 4},
		})
	}))
	defer server.Close()

	year := 2025
	c := NewClient(server.URL+"/", "test-key", server.Client())
	run, err := c.RunRollover(context.Background(), &year)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != "run-1" || run.Created != 4 || run.Status != "succeeded" {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestRunPending_DefaultYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/jobs/pending" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{}` {
			t.Errorf("expected empty object body, got %s", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"job_run": map[string]any{"id": "run-2", "kind": "pending_allocation", "status": "succeeded", "applied": 3},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	run, err := c.RunPending(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Applied != 3 {
		t.Errorf("expected 3 applied, got %d", run.Applied)
	}
}

func TestRunRollover_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "INVALID_API_KEY", "message": "Invalid or missing API key"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", server.Client())
	_, err := c.RunRollover(context.Background(), nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Code != "INVALID_API_KEY" {
		t.Errorf("unexpected status error: %+v", statusErr)
	}
}

func TestRunPending_ServerErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	_, err := c.RunPending(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if want := "unexpected status 500"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should contain %q", err.Error(), want)
	}
}

func TestRunRollover_MissingJobRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	if _, err := c.RunRollover(context.Background(), nil); err == nil {
		t.Fatal("expected error for response without job_run")
	}
}

func TestListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Query().Get("kind") != "rollover" {
			t.Errorf("expected kind=rollover, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        []map[string]any{{"id": "a", "kind": "rollover"}, {"id": "b", "kind": "rollover"}},
			"total_items": 2,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	runs, err := c.ListRuns(context.Background(), "rollover")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "a" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestRunRollover_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL, "test-key", server.Client())
	if _, err := c.RunRollover(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
