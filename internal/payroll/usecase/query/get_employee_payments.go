package query

import (
	"context"
	"fmt"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// GetEmployeePaymentsQuery represents the query to get one employee's payments
type GetEmployeePaymentsQuery struct {
	EmployeeEmail string
}

// GetEmployeePaymentsHandler handles get employee payments query
type GetEmployeePaymentsHandler struct {
	repo domain.PaymentRepository
}

// NewGetEmployeePaymentsHandler creates a new get employee payments handler
func NewGetEmployeePaymentsHandler(repo domain.PaymentRepository) *GetEmployeePaymentsHandler {
	return &GetEmployeePaymentsHandler{repo: repo}
}

// Handle returns the employee's payments, newest payment date first.
func (h *GetEmployeePaymentsHandler) Handle(ctx context.Context, query GetEmployeePaymentsQuery) ([]domain.Payment, error) {
	email := domain.NormalizeEmail(query.EmployeeEmail)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	payments, err := h.repo.FindByEmployee(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return payments, nil
}
