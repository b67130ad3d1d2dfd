package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// ConfirmPaymentCommand confirms a checkout session after redirect or webhook.
type ConfirmPaymentCommand struct {
	SessionID string
}

// ConfirmResult is the payment standing for the session's period. When
// AlreadyRecorded is set the payment was written by an earlier confirmation
// or a concurrent one; callers should treat that as success.
type ConfirmResult struct {
	Payment         *domain.Payment
	AlreadyRecorded bool
}

// ConfirmPaymentHandler moves a period from SessionCreated to Paid.
type ConfirmPaymentHandler struct {
	*settler
	gateway domain.CheckoutGateway
}

// NewConfirmPaymentHandler creates a new confirm payment handler
func NewConfirmPaymentHandler(
	payments domain.PaymentRepository,
	requests domain.PayrollRequestRepository,
	gateway domain.CheckoutGateway,
	publisher PaymentEventPublisher,
) *ConfirmPaymentHandler {
	return &ConfirmPaymentHandler{
		settler: newSettler(payments, requests, publisher),
		gateway: gateway,
	}
}

// Handle executes the confirm payment command
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmResult, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return nil, domain.Invalid("sessionId", "sessionId is required")
	}

	session, err := h.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Paid() {
		return nil, fmt.Errorf("%w: session %s has payment status %q", domain.ErrPaymentNotCompleted, sessionID, session.PaymentStatus)
	}

	payment, err := h.paymentFromSession(session)
	if err != nil {
		return nil, err
	}

	err = h.settle(ctx, payment)
	var dup *domain.DuplicatePaymentError
	if errors.As(err, &dup) {
		return h.alreadyRecorded(ctx, payment, dup)
	}
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Payment: payment}, nil
}

// alreadyRecorded loads the payment that won the period. The request is
// completed against it in case the winner's own completion never landed.
func (h *ConfirmPaymentHandler) alreadyRecorded(ctx context.Context, attempted *domain.Payment, dup *domain.DuplicatePaymentError) (*ConfirmResult, error) {
	existing, err := h.payments.FindByTransactionID(ctx, dup.Existing.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing payment %s: %w", dup.Existing.TransactionID, err)
	}
	if existing.RequestID == "" {
		existing.RequestID = attempted.RequestID
	}
	h.complete(ctx, existing, existing.ProcessedBy)

	logger.Info(ctx).
		Str("session_id", attempted.GatewaySessionID).
		Str("transaction_id", existing.TransactionID).
		Msg("Session confirmed against an existing payment")
	return &ConfirmResult{Payment: existing, AlreadyRecorded: true}, nil
}

func (h *ConfirmPaymentHandler) paymentFromSession(session *domain.GatewaySession) (*domain.Payment, error) {
	meta := session.Metadata
	if meta[domain.MetaPaymentType] != domain.PaymentTypeSalary {
		return nil, domain.Invalid("sessionId", "session %s is not a salary payment", session.SessionID)
	}

	month, err := strconv.Atoi(meta[domain.MetaMonth])
	if err != nil {
		return nil, domain.Invalid("month", "session %s has no valid month", session.SessionID)
	}
	year, err := strconv.Atoi(meta[domain.MetaYear])
	if err != nil {
		return nil, domain.Invalid("year", "session %s has no valid year", session.SessionID)
	}

	payment := &domain.Payment{
		EmployeeEmail:          domain.NormalizeEmail(meta[domain.MetaEmployeeEmail]),
		EmployeeName:           strings.TrimSpace(meta[domain.MetaEmployeeName]),
		Amount:                 session.Amount(),
		Month:                  month,
		Year:                   year,
		TransactionID:          NewTransactionID(TagStripe, h.now()),
		PaymentDate:            h.now(),
		PaymentMethod:          domain.MethodStripeCheckout,
		GatewaySessionID:       session.SessionID,
		GatewayPaymentIntentID: session.PaymentIntentID,
		ProcessedBy:            domain.ActorAdminConfirmation,
		RequestID:              meta[domain.MetaRequestID],
		Metadata: datatypes.JSONMap{
			"gateway":        "stripe",
			"currency":       session.Currency,
			"customerEmail":  session.CustomerEmail,
			"customerId":     session.CustomerID,
			"processingTime": h.now().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}

	if err := domain.ValidateEmail(payment.EmployeeEmail); err != nil {
		return nil, err
	}
	if err := domain.ValidatePeriod(payment.Month, payment.Year); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("amount", payment.Amount); err != nil {
		return nil, err
	}
	if payment.EmployeeName == "" {
		payment.EmployeeName = payment.EmployeeEmail
	}
	return payment, nil
}
