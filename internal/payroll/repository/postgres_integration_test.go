//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
)

// startPostgres runs a throwaway Postgres 16 and returns a migrated handle.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("payroll"),
		tcpostgres.WithUsername("payroll"),
		tcpostgres.WithPassword("payroll"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func TestPostgresPaymentUniqueness(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := repository.NewTracedPaymentRepository(db)

	require.NoError(t, repo.Record(ctx, newPayment("TXN_PG_1")))

	err := repo.Record(ctx, newPayment("TXN_PG_2"))
	var dup *domain.DuplicatePaymentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "TXN_PG_1", dup.Existing.TransactionID)

	// same transaction, other period
	again := newPayment("TXN_PG_1")
	again.Month = 4
	err = repo.Record(ctx, again)
	assert.ErrorIs(t, err, domain.ErrTransactionIDInUse)
	assert.NotErrorIs(t, err, domain.ErrDuplicatePayment)
}

func TestPostgresConcurrentRecords(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := repository.NewTracedPaymentRepository(db)

	const writers = 10
	results := make([]error, writers)
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			results[i] = repo.Record(ctx, newPayment(fmt.Sprintf("TXN_RACE_%d", i)))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicatePayment):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, dup)

	all, err := repo.FindByEmployee(ctx, "alice@co.com")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPostgresRequestCompletion(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := repository.NewTracedRequestRepository(db)

	req := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 2500, Month: 3, Year: 2024, RequestedBy: "hr@co.com"}
	require.NoError(t, repo.Create(ctx, req))

	err := repo.Create(ctx, &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 1, Month: 3, Year: 2024, RequestedBy: "hr@co.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	done := domain.Completion{TransactionID: "TXN_PG_1", CompletedBy: domain.ActorAdmin}
	require.NoError(t, repo.MarkCompleted(ctx, req.ID, done))
	require.NoError(t, repo.MarkCompleted(ctx, req.ID, done))

	err = repo.MarkCompleted(ctx, req.ID, domain.Completion{TransactionID: "TXN_PG_2", CompletedBy: domain.ActorAdmin})
	assert.ErrorIs(t, err, domain.ErrCompletionConflict)

	stored, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, stored.Status)
	assert.Equal(t, "TXN_PG_1", stored.TransactionID)
}
