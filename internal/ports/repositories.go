package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// Cache is a string key/value store with per-key expiration.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// SessionStore keeps dialogue state between turns of one session.
type SessionStore interface {
	Load(ctx context.Context, env *domain.RequestEnvelope) (domain.SessionState, error)
	Save(ctx context.Context, env *domain.RequestEnvelope, state domain.SessionState) error
	Delete(ctx context.Context, env *domain.RequestEnvelope) error
}

// ReportRepository is the audit trail of submitted app reports.
type ReportRepository interface {
	Save(ctx context.Context, report *domain.AppReport) error
	FindRecent(ctx context.Context, limit int) ([]domain.AppReport, error)
	FindBySession(ctx context.Context, sessionID string) ([]domain.AppReport, error)
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache: key not found")
