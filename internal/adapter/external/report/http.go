// Package report delivers completed app requests to the reporting endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("report endpoint returned status %d", e.Code)
}

type payload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HTTPReporter POSTs reports as JSON through a circuit breaker.
type HTTPReporter struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewHTTPReporter(cfg config.ReportConfig, client *http.Client, log *zap.Logger) *HTTPReporter {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	failureThreshold := cfg.Breaker.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "report-endpoint",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			// 4xx is the caller's problem, not the endpoint's health.
			return err == nil || (errors.As(err, &se) && se.Code < 500)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Report endpoint circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &HTTPReporter{
		url:     cfg.URL,
		client:  client,
		breaker: breaker,
		log:     log,
	}
}

// Report sends {"name", "description"} to the endpoint. The response body is discarded.
func (r *HTTPReporter) Report(ctx context.Context, report *domain.AppReport) error {
	body, err := json.Marshal(payload{Name: report.Name, Description: report.Description})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	start := time.Now()
	_, err = r.breaker.Execute(func() (interface{}, error) {
		return nil, r.post(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.log.Warn("Circuit breaker open, report blocked",
				zap.String("url", r.url),
				zap.String("session_id", report.SessionID),
			)
		}
		return fmt.Errorf("report %s: %w", report.ID, err)
	}

	r.log.Debug("Report delivered",
		zap.String("report_id", report.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (r *HTTPReporter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// State exposes the breaker state for health reporting.
func (r *HTTPReporter) State() gobreaker.State {
	return r.breaker.State()
}
