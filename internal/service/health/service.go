package health

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

type Pinger interface {
	Ping() error
}

type Connector interface {
	Connected() bool
}

type BreakerStater interface {
	State() gobreaker.State
}

// Config holds the dependencies probed by the readiness check. Nil fields are skipped.
type Config struct {
	Version  string
	DB       *sql.DB
	Cache    Pinger
	Queue    Connector
	Reporter BreakerStater
}

// Service handles health checks
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// NewService creates a new health service
func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.DB != nil {
		db := config.DB
		s.RegisterChecker("database", func(ctx context.Context) CheckResult {
			return probe("database", func() error { return db.PingContext(ctx) }, s.log)
		})
	}
	if config.Cache != nil {
		cache := config.Cache
		s.RegisterChecker("cache", func(ctx context.Context) CheckResult {
			return probe("cache", cache.Ping, s.log)
		})
	}
	if config.Queue != nil {
		s.RegisterChecker("queue", checkQueue(config.Queue))
	}
	if config.Reporter != nil {
		s.RegisterChecker("report_sink", checkBreaker(config.Reporter))
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every checker concurrently. Degraded checks keep the service ready.
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for k, v := range s.checkers {
		checkers[k] = v
	}
	s.mu.RUnlock()

	results := make(map[string]CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			result := checker(checkCtx)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	overallStatus := StatusHealthy
	allReady := true

	for _, result := range results {
		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			allReady = false
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func probe(name string, ping func() error, log *zap.Logger) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      name,
		Timestamp: start,
	}

	err := ping()
	result.Duration = time.Since(start)

	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("ping failed: %v", err)
		log.Warn("Health check failed", zap.String("check", name), zap.Error(err))
	} else {
		result.Status = StatusHealthy
		result.Message = "connection ok"
	}

	return result
}

func checkQueue(q Connector) Checker {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: "queue", Timestamp: time.Now()}
		// Report events are best-effort, so a lost broker only degrades.
		if q.Connected() {
			result.Status = StatusHealthy
			result.Message = "connected"
		} else {
			result.Status = StatusDegraded
			result.Message = "disconnected"
		}
		return result
	}
}

func checkBreaker(r BreakerStater) Checker {
	return func(ctx context.Context) CheckResult {
		state := r.State()
		result := CheckResult{Name: "report_sink", Timestamp: time.Now(), Message: "breaker " + state.String()}
		if state == gobreaker.StateClosed {
			result.Status = StatusHealthy
		} else {
			result.Status = StatusDegraded
		}
		return result
	}
}
