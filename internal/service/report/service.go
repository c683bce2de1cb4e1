package report

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/internal/observability/telemetry"
	"github.com/seu-repo/appinventor-skill/internal/ports"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service struct {
	reporter ports.Reporter
	repo     ports.ReportRepository
	mq       ports.MessageQueue
	subject  string
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewService wires the report sink with the optional audit trail and event
// queue. repo and mq may be nil.
func NewService(reporter ports.Reporter, repo ports.ReportRepository, mq ports.MessageQueue, subject string, timeout time.Duration, log *zap.Logger) ports.ReportService {
	return &Service{
		reporter: reporter,
		repo:     repo,
		mq:       mq,
		subject:  subject,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// Submit sends the report once and records the outcome. Only the sink error
// is returned; audit and publish failures are logged.
func (s *Service) Submit(ctx context.Context, report *domain.AppReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now().UTC()
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.reporter.Report(callCtx, report)
	telemetry.ReportLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		report.Status = domain.ReportStatusFailed
		report.Error = err.Error()
		s.log.Error("Failed to deliver app report",
			zap.String("report_id", report.ID),
			zap.String("session_id", report.SessionID),
			zap.Error(err),
		)
	} else {
		report.Status = domain.ReportStatusSent
		s.log.Info("App report delivered",
			zap.String("report_id", report.ID),
			zap.String("session_id", report.SessionID),
			zap.String("app_name", report.Name),
		)
	}
	telemetry.ReportsTotal.WithLabelValues(string(report.Status)).Inc()

	s.record(ctx, report)
	s.publish(report)

	return err
}

func (s *Service) record(ctx context.Context, report *domain.AppReport) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), report); err != nil {
		s.log.Warn("Failed to store app report",
			zap.String("report_id", report.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(report *domain.AppReport) {
	if s.mq == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.log.Warn("Failed to encode report event", zap.Error(err))
		return
	}
	if err := s.mq.Publish(s.subject, data); err != nil {
		s.log.Warn("Failed to publish report event",
			zap.String("subject", s.subject),
			zap.String("report_id", report.ID),
			zap.Error(err),
		)
	}
}

// Recent returns the latest audit entries, newest first. limit is clamped to
// [1, MaxLimit]; zero or negative means DefaultLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.AppReport, error) {
	if s.repo == nil {
		return nil, domain.ErrNoRepository
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.FindRecent(ctx, limit)
}
