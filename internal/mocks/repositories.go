package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// MockReportRepository is an in-memory ports.ReportRepository
type MockReportRepository struct {
	mu       sync.Mutex
	Saved    []domain.AppReport
	SaveFunc func(ctx context.Context, report *domain.AppReport) error
}

func (m *MockReportRepository) Save(ctx context.Context, report *domain.AppReport) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, *report)
	return nil
}

func (m *MockReportRepository) FindRecent(ctx context.Context, limit int) ([]domain.AppReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]domain.AppReport(nil), m.Saved...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockReportRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.AppReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.AppReport
	for _, r := range m.Saved {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}
