package ports

import (
	"context"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// Reporter delivers a completed app request to the reporting endpoint.
type Reporter interface {
	Report(ctx context.Context, report *domain.AppReport) error
}

// ReportService submits reports and exposes the audit trail.
type ReportService interface {
	Submit(ctx context.Context, report *domain.AppReport) error
	Recent(ctx context.Context, limit int) ([]domain.AppReport, error)
}

// Localizer resolves a message key for a locale to speakable text.
type Localizer interface {
	T(locale, key string) string
}

// MessageQueue publishes and consumes report events.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
