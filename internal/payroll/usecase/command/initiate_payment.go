package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// InitiatePaymentCommand starts a gateway checkout. With RequestID set the
// stored request is authoritative; the inline fields then only need to agree.
type InitiatePaymentCommand struct {
	RequestID     string
	EmployeeEmail string
	EmployeeName  string
	Amount        float64
	Month         int
	Year          int
}

// InitiateResult is the session plus what the admin is about to pay.
type InitiateResult struct {
	Session      *domain.CheckoutSession
	RequestID    string
	EmployeeName string
	Amount       float64
	Month        int
	Year         int
}

// InitiatePaymentHandler moves a request from Requested to SessionCreated.
// Nothing is written locally.
type InitiatePaymentHandler struct {
	requests domain.PayrollRequestRepository
	payments domain.PaymentRepository
	gateway  domain.CheckoutGateway
}

// NewInitiatePaymentHandler creates a new initiate payment handler
func NewInitiatePaymentHandler(requests domain.PayrollRequestRepository, payments domain.PaymentRepository, gateway domain.CheckoutGateway) *InitiatePaymentHandler {
	return &InitiatePaymentHandler{requests: requests, payments: payments, gateway: gateway}
}

// Handle executes the initiate payment command
func (h *InitiatePaymentHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (*InitiateResult, error) {
	checkout, req, err := h.resolve(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// an explicitly named request is judged on its own status first
	if strings.TrimSpace(cmd.RequestID) != "" && req != nil && !req.IsPending() {
		return nil, fmt.Errorf("%w: request %s", domain.ErrAlreadyProcessed, req.ID)
	}

	// fail fast before any external round trip
	existing, err := h.payments.FindByPeriod(ctx, checkout.EmployeeEmail, checkout.Month, checkout.Year)
	if err == nil {
		return nil, &domain.DuplicatePaymentError{Existing: existing.Summary()}
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}
	if req != nil && !req.IsPending() {
		return nil, fmt.Errorf("%w: request %s", domain.ErrAlreadyProcessed, req.ID)
	}

	session, err := h.gateway.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("session_id", session.SessionID).
		Str("request_id", checkout.RequestID).
		Str("employee_email", checkout.EmployeeEmail).
		Int("month", checkout.Month).
		Int("year", checkout.Year).
		Float64("amount", checkout.Amount).
		Msg("Payment initiated")

	return &InitiateResult{
		Session:      session,
		RequestID:    checkout.RequestID,
		EmployeeName: checkout.EmployeeName,
		Amount:       checkout.Amount,
		Month:        checkout.Month,
		Year:         checkout.Year,
	}, nil
}

// resolve settles what is being paid. The matching payroll request, if any,
// is returned alongside.
func (h *InitiatePaymentHandler) resolve(ctx context.Context, cmd InitiatePaymentCommand) (domain.CheckoutRequest, *domain.PayrollRequest, error) {
	inline := domain.CheckoutRequest{
		RequestID:     strings.TrimSpace(cmd.RequestID),
		EmployeeEmail: domain.NormalizeEmail(cmd.EmployeeEmail),
		EmployeeName:  strings.TrimSpace(cmd.EmployeeName),
		Amount:        cmd.Amount,
		Month:         cmd.Month,
		Year:          cmd.Year,
	}

	if inline.RequestID == "" {
		if err := validateCheckout(inline); err != nil {
			return inline, nil, err
		}
		// link the session to a request for the same period when one exists
		req, err := h.requests.FindByPeriod(ctx, inline.EmployeeEmail, inline.Month, inline.Year)
		if errors.Is(err, domain.ErrRequestNotFound) {
			return inline, nil, nil
		}
		if err != nil {
			return inline, nil, err
		}
		inline.RequestID = req.ID
		return inline, req, nil
	}

	req, err := h.requests.FindByID(ctx, inline.RequestID)
	if err != nil {
		return inline, nil, err
	}
	if err := matchRequest(req, inline.EmployeeEmail, inline.Amount, inline.Month, inline.Year); err != nil {
		return inline, nil, err
	}

	name := inline.EmployeeName
	if name == "" {
		name = req.EmployeeName
	}
	return domain.CheckoutRequest{
		RequestID:     req.ID,
		EmployeeEmail: req.EmployeeEmail,
		EmployeeName:  name,
		Amount:        req.Salary,
		Month:         req.Month,
		Year:          req.Year,
	}, req, nil
}

func validateCheckout(c domain.CheckoutRequest) error {
	if err := domain.ValidateEmail(c.EmployeeEmail); err != nil {
		return err
	}
	if c.EmployeeName == "" {
		return domain.Invalid("employeeName", "employeeName is required")
	}
	if err := domain.ValidateAmount("amount", c.Amount); err != nil {
		return err
	}
	return domain.ValidatePeriod(c.Month, c.Year)
}

// matchRequest rejects inline values that contradict the stored request.
// Zero values mean "not supplied".
func matchRequest(req *domain.PayrollRequest, email string, amount float64, month, year int) error {
	if email != "" && email != req.EmployeeEmail {
		return domain.Invalid("employeeEmail", "employeeEmail does not match payroll request %s", req.ID)
	}
	if month != 0 && month != req.Month {
		return domain.Invalid("month", "month does not match payroll request %s", req.ID)
	}
	if year != 0 && year != req.Year {
		return domain.Invalid("year", "year does not match payroll request %s", req.ID)
	}
	if amount != 0 && amount != req.Salary {
		return domain.Invalid("amount", "amount %.2f does not match requested salary %.2f", amount, req.Salary)
	}
	return nil
}
