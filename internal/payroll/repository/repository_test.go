package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/payrolltest"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
)

func newPayment(txID string) *domain.Payment {
	return &domain.Payment{
		EmployeeEmail: "alice@co.com",
		EmployeeName:  "Alice",
		Amount:        2500,
		Month:         3,
		Year:          2024,
		TransactionID: txID,
		PaymentMethod: domain.MethodCreditCard,
		ProcessedBy:   domain.ActorAdmin,
	}
}

func TestRequestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTracedRequestRepository(payrolltest.NewDB(t))

	first := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 2500, Month: 3, Year: 2024, RequestedBy: "hr@co.com"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, domain.RequestStatusPending, first.Status)

	second := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 3000, Month: 3, Year: 2024, RequestedBy: "other-hr@co.com"}
	err := repo.Create(ctx, second)

	var dup *domain.DuplicateRequestError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.Existing.ID)
	assert.Equal(t, "hr@co.com", dup.Existing.RequestedBy)
	assert.Equal(t, domain.RequestStatusPending, dup.Existing.Status)

	// another month is a different period
	april := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 2500, Month: 4, Year: 2024, RequestedBy: "hr@co.com"}
	require.NoError(t, repo.Create(ctx, april))
}

func TestRequestListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormRequestRepository(payrolltest.NewDB(t))

	var ids []string
	for month := 1; month <= 3; month++ {
		req := &domain.PayrollRequest{EmployeeEmail: "bob@co.com", EmployeeName: "Bob", Salary: 100, Month: month, Year: 2024, RequestedBy: "hr@co.com",
			CreatedAt: time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, repo.Create(ctx, req))
		ids = append(ids, req.ID)
	}
	// the newest one is paid, so it sorts after both pending requests
	require.NoError(t, repo.MarkCompleted(ctx, ids[2], domain.Completion{TransactionID: "TXN_1", CompletedBy: domain.ActorAdmin}))

	list, err := repo.List(ctx, domain.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[1], ids[0], ids[2]}, []string{list[0].ID, list[1].ID, list[2].ID})

	pending, err := repo.List(ctx, domain.RequestFilter{Status: domain.RequestStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTracedRequestRepository(payrolltest.NewDB(t))

	req := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 2500, Month: 3, Year: 2024, RequestedBy: "hr@co.com"}
	require.NoError(t, repo.Create(ctx, req))

	c := domain.Completion{TransactionID: "STRIPE_1", CompletedBy: domain.ActorAdminConfirmation, GatewaySessionID: "cs_1"}
	require.NoError(t, repo.MarkCompleted(ctx, req.ID, c))
	require.NoError(t, repo.MarkCompleted(ctx, req.ID, c), "same transaction is idempotent")

	err := repo.MarkCompleted(ctx, req.ID, domain.Completion{TransactionID: "TXN_2"})
	assert.ErrorIs(t, err, domain.ErrCompletionConflict)

	stored, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, stored.Status)
	assert.Equal(t, "STRIPE_1", stored.TransactionID)
	assert.Equal(t, "cs_1", stored.GatewaySessionID)
	assert.NotNil(t, stored.ProcessedAt)

	assert.ErrorIs(t, repo.MarkCompleted(ctx, "missing", c), domain.ErrRequestNotFound)
}

func TestPaymentRecordDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTracedPaymentRepository(payrolltest.NewDB(t))

	first := newPayment("TXN_1")
	require.NoError(t, repo.Record(ctx, first))
	assert.Equal(t, domain.PaymentStatusPaid, first.Status)

	err := repo.Record(ctx, newPayment("TXN_2"))
	var dup *domain.DuplicatePaymentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "TXN_1", dup.Existing.TransactionID)
	assert.Equal(t, 2500.0, dup.Existing.Amount)
	assert.False(t, dup.Existing.PaymentDate.IsZero())

	// same period and same transaction still describes the stored row
	err = repo.Record(ctx, newPayment("TXN_1"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 3, dup.Existing.Month)

	_, err = repo.FindByPeriod(ctx, "alice@co.com", 4, 2024)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestPaymentTransactionIDClash(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTracedPaymentRepository(payrolltest.NewDB(t))

	require.NoError(t, repo.Record(ctx, newPayment("TXN_FIXED")))

	bob := newPayment("TXN_FIXED")
	bob.EmployeeEmail = "bob@co.com"
	bob.EmployeeName = "Bob"
	bob.Month = 5
	err := repo.Record(ctx, bob)

	assert.ErrorIs(t, err, domain.ErrTransactionIDInUse)
	assert.NotErrorIs(t, err, domain.ErrDuplicatePayment, "bob's period is not paid")
	var dup *domain.DuplicatePaymentError
	assert.False(t, errors.As(err, &dup))

	_, err = repo.FindByPeriod(ctx, "bob@co.com", 5, 2024)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	// alice's own month under a fresh id is still a period duplicate
	again := newPayment("TXN_OTHER")
	require.ErrorAs(t, repo.Record(ctx, again), &dup)
	assert.Equal(t, "TXN_FIXED", dup.Existing.TransactionID)
}

func TestPaymentConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTracedPaymentRepository(payrolltest.NewDB(t))

	const writers = 8
	results := make([]error, writers)
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			results[i] = repo.Record(ctx, newPayment(fmt.Sprintf("TXN_%d", i)))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var winners int
	var winner string
	for i, err := range results {
		if err == nil {
			winners++
			winner = fmt.Sprintf("TXN_%d", i)
			continue
		}
		var dup *domain.DuplicatePaymentError
		require.True(t, errors.As(err, &dup), "unexpected error: %v", err)
	}
	require.Equal(t, 1, winners)

	for _, err := range results {
		var dup *domain.DuplicatePaymentError
		if errors.As(err, &dup) {
			assert.Equal(t, winner, dup.Existing.TransactionID)
		}
	}

	payments, err := repo.FindByEmployee(ctx, "alice@co.com")
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestPaymentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormPaymentRepository(payrolltest.NewDB(t))

	for month := 1; month <= 3; month++ {
		p := newPayment(fmt.Sprintf("TXN_%d", month))
		p.Month = month
		p.PaymentDate = time.Date(2024, time.Month(month), 28, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Record(ctx, p))
	}

	payments, err := repo.FindByEmployee(ctx, "alice@co.com")
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, 3, payments[0].Month)
	assert.Equal(t, 1, payments[2].Month)

	page, err := repo.FindAll(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	byTx, err := repo.FindByTransactionID(ctx, "TXN_2")
	require.NoError(t, err)
	assert.Equal(t, 2, byTx.Month)
}
