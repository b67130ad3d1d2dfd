package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

var tracer = otel.Tracer("payroll-repository")

// TracedRequestRepository wraps GormRequestRepository with tracing
type TracedRequestRepository struct {
	*GormRequestRepository
}

// NewTracedRequestRepository creates a new repository with tracing
func NewTracedRequestRepository(db *gorm.DB) *TracedRequestRepository {
	return &TracedRequestRepository{GormRequestRepository: NewGormRequestRepository(db)}
}

func (r *TracedRequestRepository) Create(ctx context.Context, req *domain.PayrollRequest) error {
	ctx, span := tracer.Start(ctx, "repository.PayrollRequest.Create",
		trace.WithAttributes(periodAttributes(req.EmployeeEmail, req.Month, req.Year)...),
	)
	defer span.End()

	err := r.GormRequestRepository.Create(ctx, req)
	if err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.String("payroll_request.id", req.ID))
	return nil
}

func (r *TracedRequestRepository) FindByID(ctx context.Context, id string) (*domain.PayrollRequest, error) {
	ctx, span := tracer.Start(ctx, "repository.PayrollRequest.FindByID",
		trace.WithAttributes(attribute.String("payroll_request.id", id)),
	)
	defer span.End()

	req, err := r.GormRequestRepository.FindByID(ctx, id)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("payroll_request.status", req.Status))
	return req, nil
}

func (r *TracedRequestRepository) FindByPeriod(ctx context.Context, email string, month, year int) (*domain.PayrollRequest, error) {
	ctx, span := tracer.Start(ctx, "repository.PayrollRequest.FindByPeriod",
		trace.WithAttributes(periodAttributes(email, month, year)...),
	)
	defer span.End()

	req, err := r.GormRequestRepository.FindByPeriod(ctx, email, month, year)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	return req, nil
}

func (r *TracedRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.PayrollRequest, error) {
	ctx, span := tracer.Start(ctx, "repository.PayrollRequest.List",
		trace.WithAttributes(
			attribute.String("query.status", filter.Status),
			attribute.Int("query.limit", filter.Limit),
			attribute.Int("query.offset", filter.Offset),
		),
	)
	defer span.End()

	requests, err := r.GormRequestRepository.List(ctx, filter)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(requests)))
	return requests, nil
}

func (r *TracedRequestRepository) MarkCompleted(ctx context.Context, id string, c domain.Completion) error {
	ctx, span := tracer.Start(ctx, "repository.PayrollRequest.MarkCompleted",
		trace.WithAttributes(
			attribute.String("payroll_request.id", id),
			attribute.String("payment.transaction_id", c.TransactionID),
		),
	)
	defer span.End()

	err := r.GormRequestRepository.MarkCompleted(ctx, id, c)
	addDBErrorToSpan(span, err)
	return err
}

// TracedPaymentRepository wraps GormPaymentRepository with tracing
type TracedPaymentRepository struct {
	*GormPaymentRepository
}

// NewTracedPaymentRepository creates a new repository with tracing
func NewTracedPaymentRepository(db *gorm.DB) *TracedPaymentRepository {
	return &TracedPaymentRepository{GormPaymentRepository: NewGormPaymentRepository(db)}
}

func (r *TracedPaymentRepository) Record(ctx context.Context, payment *domain.Payment) error {
	attrs := periodAttributes(payment.EmployeeEmail, payment.Month, payment.Year)
	attrs = append(attrs,
		attribute.String("payment.transaction_id", payment.TransactionID),
		attribute.String("payment.method", payment.PaymentMethod),
		attribute.Float64("payment.amount", payment.Amount),
	)
	ctx, span := tracer.Start(ctx, "repository.Payment.Record", trace.WithAttributes(attrs...))
	defer span.End()

	err := r.GormPaymentRepository.Record(ctx, payment)
	var dup *domain.DuplicatePaymentError
	if errors.As(err, &dup) {
		// a lost race is an expected outcome, not a failure of the store
		span.SetAttributes(
			attribute.Bool("payment.duplicate", true),
			attribute.String("payment.existing_transaction_id", dup.Existing.TransactionID),
		)
		return err
	}
	if err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.String("payment.id", payment.ID))
	return nil
}

func (r *TracedPaymentRepository) FindByPeriod(ctx context.Context, email string, month, year int) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.Payment.FindByPeriod",
		trace.WithAttributes(periodAttributes(email, month, year)...),
	)
	defer span.End()

	payment, err := r.GormPaymentRepository.FindByPeriod(ctx, email, month, year)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		span.SetAttributes(attribute.Bool("payment.exists", false))
		return nil, err
	}
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("payment.exists", true))
	return payment, nil
}

func (r *TracedPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.Payment.FindByTransactionID",
		trace.WithAttributes(attribute.String("payment.transaction_id", transactionID)),
	)
	defer span.End()

	payment, err := r.GormPaymentRepository.FindByTransactionID(ctx, transactionID)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	return payment, nil
}

func (r *TracedPaymentRepository) FindByEmployee(ctx context.Context, email string) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.Payment.FindByEmployee",
		trace.WithAttributes(attribute.String("employee.email", email)),
	)
	defer span.End()

	payments, err := r.GormPaymentRepository.FindByEmployee(ctx, email)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(payments)))
	return payments, nil
}

func (r *TracedPaymentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.Payment.FindAll",
		trace.WithAttributes(
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	payments, err := r.GormPaymentRepository.FindAll(ctx, limit, offset)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(payments)))
	return payments, nil
}

func periodAttributes(email string, month, year int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("employee.email", email),
		attribute.Int("period.month", month),
		attribute.Int("period.year", year),
	}
}

// Helper function to add database error details to span
func addDBErrorToSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("database error: %v", err))
	}
}
