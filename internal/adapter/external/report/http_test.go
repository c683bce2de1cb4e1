package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

func testConfig(url string) config.ReportConfig {
	return config.ReportConfig{
		URL:     url,
		Timeout: time.Second,
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		},
	}
}

func testReport() *domain.AppReport {
	return &domain.AppReport{
		ID:          "r-1",
		SessionID:   "s-1",
		Name:        "Weather Tracker",
		Description: "create an app with an app that shows the weather",
	}
}

func TestReport_PostsJSON(t *testing.T) {
	var gotBody []byte
	var gotType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("ignored"))
	}))
	defer server.Close()

	reporter := NewHTTPReporter(testConfig(server.URL), nil, zap.NewNop())

	if err := reporter.Report(context.Background(), testReport()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotType != "application/json" {
		t.Errorf("expected application/json, got %s", gotType)
	}

	var body map[string]string
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("expected exactly name and description, got %v", body)
	}
	if body["name"] != "Weather Tracker" {
		t.Errorf("unexpected name %q", body["name"])
	}
	if body["description"] != "create an app with an app that shows the weather" {
		t.Errorf("unexpected description %q", body["description"])
	}
}

func TestReport_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	reporter := NewHTTPReporter(testConfig(server.URL), nil, zap.NewNop())

	err := reporter.Report(context.Background(), testReport())

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if reporter.State() != gobreaker.StateClosed {
		t.Error("4xx must not count against the breaker")
	}
}

func TestReport_BreakerOpensOnServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	reporter := NewHTTPReporter(testConfig(server.URL), nil, zap.NewNop())
	ctx := context.Background()

	reporter.Report(ctx, testReport())
	reporter.Report(ctx, testReport())

	if reporter.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", reporter.State())
	}

	err := reporter.Report(ctx, testReport())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected open breaker to skip the endpoint, got %d hits", hits)
	}
}

func TestReport_RespectsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	reporter := NewHTTPReporter(testConfig(server.URL), nil, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := reporter.Report(ctx, testReport()); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("report did not honour the context deadline")
	}
}
