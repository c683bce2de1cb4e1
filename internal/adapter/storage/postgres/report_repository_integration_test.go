//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/domain"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("appinventor_test"),
		tcpostgres.WithUsername("appinventor"),
		tcpostgres.WithPassword("appinventor_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Postgres container not available: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return dsn
}

func TestReportRepository_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	db, err := NewConnection(config.DatabaseConfig{URL: dsn}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer Close(db)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := NewReportRepository(db, zap.NewNop())
	base := time.Now().UTC().Truncate(time.Second)

	reports := []*domain.AppReport{
		{ID: "r-1", SessionID: "s-1", Name: "A", Description: "create an app with a", Status: domain.ReportStatusSent, CreatedAt: base},
		{ID: "r-2", SessionID: "s-1", Name: "B", Description: "create an app with b", Status: domain.ReportStatusFailed, Error: "timeout", CreatedAt: base.Add(time.Second)},
		{ID: "r-3", SessionID: "s-2", Name: "C", Description: "create an app with c", Status: domain.ReportStatusSent, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, r := range reports {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.ID, err)
		}
	}

	t.Run("FindRecent", func(t *testing.T) {
		got, err := repo.FindRecent(ctx, 2)
		if err != nil {
			t.Fatalf("FindRecent failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "r-3" || got[1].ID != "r-2" {
			t.Errorf("unexpected order: %+v", got)
		}
	})

	t.Run("FindBySession", func(t *testing.T) {
		got, err := repo.FindBySession(ctx, "s-1")
		if err != nil {
			t.Fatalf("FindBySession failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "r-1" {
			t.Errorf("unexpected reports: %+v", got)
		}
		if got[1].Error != "timeout" {
			t.Errorf("expected error to be persisted, got %q", got[1].Error)
		}
	})

	t.Run("RawTable", func(t *testing.T) {
		raw, err := sql.Open("postgres", dsn)
		if err != nil {
			t.Fatalf("Failed to open lib/pq connection: %v", err)
		}
		defer raw.Close()

		var count int
		if err := raw.QueryRowContext(ctx, "SELECT COUNT(*) FROM app_reports").Scan(&count); err != nil {
			t.Fatalf("Failed to count rows: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 rows, got %d", count)
		}
	})
}
