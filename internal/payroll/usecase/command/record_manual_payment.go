package command

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// Manual payment defaults
const (
	DefaultCardLast4      = "4242"
	DefaultCardholderName = "Admin User"
)

// RecordManualPaymentCommand records a payment made outside the gateway.
type RecordManualPaymentCommand struct {
	RequestID      string
	EmployeeEmail  string
	EmployeeName   string
	Amount         float64
	Month          int
	Year           int
	TransactionID  string
	PaymentMethod  string
	CardLast4      string
	CardholderName string
	ProcessedBy    string
}

// RecordManualPaymentHandler moves a period from Requested straight to Paid.
type RecordManualPaymentHandler struct {
	*settler
}

// NewRecordManualPaymentHandler creates a new record manual payment handler
func NewRecordManualPaymentHandler(
	payments domain.PaymentRepository,
	requests domain.PayrollRequestRepository,
	publisher PaymentEventPublisher,
) *RecordManualPaymentHandler {
	return &RecordManualPaymentHandler{settler: newSettler(payments, requests, publisher)}
}

// Handle executes the command. A period that is already paid fails with
// *domain.DuplicatePaymentError describing the stored payment.
func (h *RecordManualPaymentHandler) Handle(ctx context.Context, cmd RecordManualPaymentCommand) (*domain.Payment, error) {
	payment, err := h.buildPayment(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := h.settle(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (h *RecordManualPaymentHandler) buildPayment(ctx context.Context, cmd RecordManualPaymentCommand) (*domain.Payment, error) {
	email := domain.NormalizeEmail(cmd.EmployeeEmail)
	name := strings.TrimSpace(cmd.EmployeeName)
	requestID := strings.TrimSpace(cmd.RequestID)

	if requestID != "" {
		req, err := h.requests.FindByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if err := matchRequest(req, email, 0, cmd.Month, cmd.Year); err != nil {
			return nil, err
		}
		email = req.EmployeeEmail
		cmd.Month, cmd.Year = req.Month, req.Year
		if name == "" {
			name = req.EmployeeName
		}
		if cmd.Amount == 0 {
			cmd.Amount = req.Salary
		}
	}

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Invalid("employeeName", "employeeName is required")
	}
	if err := domain.ValidateAmount("amount", cmd.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidatePeriod(cmd.Month, cmd.Year); err != nil {
		return nil, err
	}

	cardLast4 := strings.TrimSpace(cmd.CardLast4)
	if cardLast4 == "" {
		cardLast4 = DefaultCardLast4
	}
	if !isLast4(cardLast4) {
		return nil, domain.Invalid("cardLast4", "cardLast4 must be exactly 4 digits")
	}
	cardholder := strings.TrimSpace(cmd.CardholderName)
	if cardholder == "" {
		cardholder = DefaultCardholderName
	}
	method := strings.TrimSpace(cmd.PaymentMethod)
	if method == "" {
		method = domain.MethodCreditCard
	}
	processedBy := strings.TrimSpace(cmd.ProcessedBy)
	if processedBy == "" {
		processedBy = domain.ActorAdmin
	}

	now := h.now()
	txID := strings.TrimSpace(cmd.TransactionID)
	if txID == "" {
		txID = NewTransactionID(TagManual, now)
	}

	return &domain.Payment{
		EmployeeEmail:  email,
		EmployeeName:   name,
		Amount:         cmd.Amount,
		Month:          cmd.Month,
		Year:           cmd.Year,
		TransactionID:  txID,
		PaymentDate:    now,
		PaymentMethod:  method,
		CardLast4:      cardLast4,
		CardholderName: cardholder,
		ProcessedBy:    processedBy,
		RequestID:      requestID,
		Metadata: datatypes.JSONMap{
			"source":         "manual",
			"processingTime": now.Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}, nil
}

func isLast4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
