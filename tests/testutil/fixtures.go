package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/app"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/auth"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres"
	"github.com/gtservice/gtledger/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool  *pgxpool.Pool
	Repos app.Repositories
	t     *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.NewMigrator(dbURL, migrationsPath(t), zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, Repos: app.PostgresRepositories(pool), t: t}
	t.Cleanup(db.Cleanup)
	db.TruncateAll(context.Background())
	return db
}

func migrationsPath(t *testing.T) string {
	t.Helper()
	for _, p := range []string{"migrations", "../migrations", "../../migrations"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Fatalf("migrations directory not found")
	return ""
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE
			audit_logs, outbox_events, accounting_records, payments, expenses,
			invoice_items, invoices, stock_alerts, stock_movements, jobs,
			vehicles, customers, users, parts, document_sequences
		CASCADE
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Services wires every use case onto the test database.
func (db *TestDB) Services() *app.Services {
	return app.NewServices(db.Repos, app.Options{
		TaxRate: decimal.RequireFromString("0.12"),
		Auth:    usecase.AuthSettings{MaxFailedAttempts: 3, LockoutDuration: time.Minute, BcryptCost: 4},
		Tokens:  auth.NewJWTManager("integration-secret", time.Hour),
		OTP:     auth.NewTOTP("GT Service"),
		Metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
		Logger:  zerolog.Nop(),
	})
}

// CreateTestPart creates a part with an opening balance.
func (db *TestDB) CreateTestPart(ctx context.Context, svc *app.Services, quantity, lowThreshold int64) *domain.Part {
	db.t.Helper()

	result, err := svc.Stock.CreatePart(ctx, usecase.CreatePartInput{
		Code:            "P-" + GenerateID()[20:],
		Name:            "Brake pad set",
		UnitCost:        decimal.RequireFromString("25.00"),
		LowThreshold:    lowThreshold,
		InitialQuantity: quantity,
	})
	if err != nil {
		db.t.Fatalf("failed to create test part: %v", err)
	}
	return result.Part
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
