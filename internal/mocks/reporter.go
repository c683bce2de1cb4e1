package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// MockReporter records every report it is asked to deliver.
type MockReporter struct {
	mu         sync.Mutex
	Reports    []domain.AppReport
	ReportFunc func(ctx context.Context, report *domain.AppReport) error
}

func (m *MockReporter) Report(ctx context.Context, report *domain.AppReport) error {
	m.mu.Lock()
	m.Reports = append(m.Reports, *report)
	m.mu.Unlock()

	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, report)
	}
	return nil
}

func (m *MockReporter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}
