package command

import (
	"context"
	"errors"
	"strings"

	"github.com/tair/empowhr-payroll/internal/payroll/directory"
	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/metrics"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// CreateRequestCommand represents the command to create a payroll request
type CreateRequestCommand struct {
	EmployeeID    string
	EmployeeEmail string
	EmployeeName  string
	Salary        float64
	Month         int
	Year          int
	RequestedBy   string
}

// CreateRequestHandler handles create payroll request command
type CreateRequestHandler struct {
	repo      domain.PayrollRequestRepository
	directory domain.EmployeeDirectory
}

// NewCreateRequestHandler creates a new handler. directory may be nil when
// the user directory is not reachable from this service.
func NewCreateRequestHandler(repo domain.PayrollRequestRepository, dir domain.EmployeeDirectory) *CreateRequestHandler {
	return &CreateRequestHandler{repo: repo, directory: dir}
}

// Handle executes the create payroll request command
func (h *CreateRequestHandler) Handle(ctx context.Context, cmd CreateRequestCommand) (*domain.PayrollRequest, error) {
	req := &domain.PayrollRequest{
		EmployeeID:    strings.TrimSpace(cmd.EmployeeID),
		EmployeeEmail: domain.NormalizeEmail(cmd.EmployeeEmail),
		EmployeeName:  strings.TrimSpace(cmd.EmployeeName),
		Salary:        cmd.Salary,
		Month:         cmd.Month,
		Year:          cmd.Year,
		RequestedBy:   strings.TrimSpace(cmd.RequestedBy),
	}
	if err := validateRequest(req); err != nil {
		metrics.PayrollRequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	if h.directory != nil {
		if _, err := directory.CheckPayable(ctx, h.directory, req.EmployeeEmail); err != nil {
			metrics.PayrollRequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
	}

	err := h.repo.Create(ctx, req)
	var dup *domain.DuplicateRequestError
	if errors.As(err, &dup) {
		metrics.PayrollRequestsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		logger.Warn(ctx).
			Str("employee_email", req.EmployeeEmail).
			Int("month", req.Month).
			Int("year", req.Year).
			Str("existing_request_id", dup.Existing.ID).
			Msg("Duplicate payroll request blocked")
		return nil, err
	}
	if err != nil {
		metrics.PayrollRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.PayrollRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.Info(ctx).
		Str("request_id", req.ID).
		Str("employee_email", req.EmployeeEmail).
		Int("month", req.Month).
		Int("year", req.Year).
		Str("requested_by", req.RequestedBy).
		Msg("Payroll request created")
	return req, nil
}

func validateRequest(req *domain.PayrollRequest) error {
	if err := domain.ValidateEmail(req.EmployeeEmail); err != nil {
		return err
	}
	if req.EmployeeName == "" {
		return domain.Invalid("employeeName", "employeeName is required")
	}
	if err := domain.ValidateAmount("salary", req.Salary); err != nil {
		return err
	}
	if err := domain.ValidatePeriod(req.Month, req.Year); err != nil {
		return err
	}
	if req.RequestedBy == "" {
		return domain.Invalid("requestedBy", "requestedBy is required")
	}
	return nil
}
