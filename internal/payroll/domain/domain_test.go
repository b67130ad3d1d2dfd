package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteTransitions(t *testing.T) {
	req := &PayrollRequest{ID: "r1", Status: RequestStatusPending}
	at := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	changed, err := req.Complete(Completion{TransactionID: "STRIPE_1", CompletedBy: ActorAdminConfirmation, ProcessedAt: at})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, RequestStatusCompleted, req.Status)
	assert.Equal(t, "STRIPE_1", req.TransactionID)
	require.NotNil(t, req.ProcessedAt)
	assert.Equal(t, at, *req.ProcessedAt)

	changed, err = req.Complete(Completion{TransactionID: "STRIPE_1"})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = req.Complete(Completion{TransactionID: "TXN_2"})
	assert.ErrorIs(t, err, ErrCompletionConflict)
	assert.Equal(t, "STRIPE_1", req.TransactionID)
	assert.Equal(t, at, *req.ProcessedAt)
}

func TestCompleteRequiresTransaction(t *testing.T) {
	req := &PayrollRequest{Status: RequestStatusPending}
	_, err := req.Complete(Completion{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, req.IsPending())
}

func TestDuplicateErrors(t *testing.T) {
	paid := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	var err error = fmt.Errorf("record: %w", &DuplicatePaymentError{Existing: PaymentSummary{
		TransactionID: "STRIPE_1", Amount: 2500, PaymentDate: paid, Month: 3, Year: 2024,
	}})

	assert.ErrorIs(t, err, ErrDuplicatePayment)
	var dup *DuplicatePaymentError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 2500.0, dup.Existing.Amount)
	assert.Equal(t, "Payment already exists for March 2024. Transaction ID: STRIPE_1", dup.Error())

	reqErr := &DuplicateRequestError{Existing: RequestSummary{Month: 12, Year: 2023}}
	assert.ErrorIs(t, reqErr, ErrDuplicateRequest)
	assert.Equal(t, "Payroll request already exists for December 2023", reqErr.Error())
}

func TestGatewayErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		kind     GatewayErrorKind
		sentinel error
	}{
		{GatewayUnavailable, ErrGatewayUnavailable},
		{RateLimited, ErrRateLimited},
		{InvalidPaymentRequest, ErrInvalidPaymentRequest},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("initiate: %w", NewGatewayError(tt.kind, "stripe", cause))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, cause)

			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.kind, gwErr.Kind)
		})
	}

	assert.NotErrorIs(t, NewGatewayError(RateLimited, "stripe", nil), ErrGatewayUnavailable)
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@co.com"))
	assert.ErrorIs(t, ValidateEmail(""), ErrValidation)
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrValidation)
	assert.ErrorIs(t, ValidateEmail("Alice <alice@co.com>"), ErrValidation)

	assert.NoError(t, ValidatePeriod(3, 2024))
	assert.ErrorIs(t, ValidatePeriod(0, 2024), ErrValidation)
	assert.ErrorIs(t, ValidatePeriod(13, 2024), ErrValidation)
	assert.ErrorIs(t, ValidatePeriod(1, 1999), ErrValidation)

	err := ValidateAmount("salary", 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "salary", vErr.Field)

	assert.Equal(t, "alice@co.com", NormalizeEmail("  Alice@CO.com "))
	assert.Equal(t, "March", MonthName(3))
	assert.Equal(t, "Unknown", MonthName(0))
}

func TestGatewaySessionAmount(t *testing.T) {
	s := &GatewaySession{PaymentStatus: SessionPaymentPaid, AmountTotal: 250050}
	assert.True(t, s.Paid())
	assert.Equal(t, 2500.5, s.Amount())
}
