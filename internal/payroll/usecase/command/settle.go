package command

import (
	"context"
	"errors"
	"time"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/metrics"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// PaymentEventPublisher announces payments written to the ledger.
type PaymentEventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, payment *domain.Payment) error
}

// NoopPublisher drops events. Used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPaymentRecorded(context.Context, *domain.Payment) error { return nil }

// settler is the shared tail of every path that writes a payment: insert,
// then complete the originating request, then announce the payment. Only the
// insert decides the outcome.
type settler struct {
	payments  domain.PaymentRepository
	requests  domain.PayrollRequestRepository
	publisher PaymentEventPublisher
	now       func() time.Time
}

func newSettler(payments domain.PaymentRepository, requests domain.PayrollRequestRepository, publisher PaymentEventPublisher) *settler {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &settler{
		payments:  payments,
		requests:  requests,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// settle records payment. A lost race comes back as *domain.DuplicatePaymentError.
func (s *settler) settle(ctx context.Context, payment *domain.Payment) error {
	err := s.payments.Record(ctx, payment)
	var dup *domain.DuplicatePaymentError
	if errors.As(err, &dup) {
		metrics.PaymentsRecordedTotal.WithLabelValues(payment.PaymentMethod, metrics.OutcomeDuplicate).Inc()
		logger.Warn(ctx).
			Str("employee_email", payment.EmployeeEmail).
			Int("month", payment.Month).
			Int("year", payment.Year).
			Str("transaction_id", payment.TransactionID).
			Str("existing_transaction_id", dup.Existing.TransactionID).
			Msg("Duplicate payment blocked")
		return err
	}
	if err != nil {
		metrics.PaymentsRecordedTotal.WithLabelValues(payment.PaymentMethod, metrics.OutcomeError).Inc()
		return err
	}

	metrics.PaymentsRecordedTotal.WithLabelValues(payment.PaymentMethod, metrics.OutcomeSuccess).Inc()
	logger.Info(ctx).
		Str("employee_email", payment.EmployeeEmail).
		Int("month", payment.Month).
		Int("year", payment.Year).
		Str("transaction_id", payment.TransactionID).
		Str("payment_method", payment.PaymentMethod).
		Float64("amount", payment.Amount).
		Msg("Payment recorded")

	s.complete(ctx, payment, payment.ProcessedBy)

	if err := s.publisher.PublishPaymentRecorded(ctx, payment); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("transaction_id", payment.TransactionID).
			Msg("Failed to publish payment recorded event")
	}
	return nil
}

// complete marks the payroll request behind payment as completed. The
// payment is already durable, so failures are logged and counted only.
func (s *settler) complete(ctx context.Context, payment *domain.Payment, completedBy string) {
	requestID := payment.RequestID
	if requestID == "" {
		req, err := s.requests.FindByPeriod(ctx, payment.EmployeeEmail, payment.Month, payment.Year)
		if errors.Is(err, domain.ErrRequestNotFound) {
			return
		}
		if err != nil {
			s.completionFailed(ctx, payment, err)
			return
		}
		requestID = req.ID
	}

	err := s.requests.MarkCompleted(ctx, requestID, domain.Completion{
		TransactionID:    payment.TransactionID,
		CompletedBy:      completedBy,
		GatewaySessionID: payment.GatewaySessionID,
		ProcessedAt:      s.now(),
	})
	if err != nil {
		s.completionFailed(ctx, payment, err)
		return
	}

	logger.Debug(ctx).
		Str("request_id", requestID).
		Str("transaction_id", payment.TransactionID).
		Msg("Payroll request completed")
}

func (s *settler) completionFailed(ctx context.Context, payment *domain.Payment, err error) {
	metrics.CompletionFailuresTotal.Inc()
	logger.Warn(ctx).
		Err(err).
		Str("request_id", payment.RequestID).
		Str("transaction_id", payment.TransactionID).
		Str("employee_email", payment.EmployeeEmail).
		Int("month", payment.Month).
		Int("year", payment.Year).
		Msg("Payment recorded but payroll request could not be completed")
}
