package query

import (
	"context"
	"fmt"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// ListRequestsQuery represents the query to list payroll requests
type ListRequestsQuery struct {
	Status        string
	EmployeeEmail string
	Limit         int
	Offset        int
}

// ListRequestsHandler handles list payroll requests query
type ListRequestsHandler struct {
	repo domain.PayrollRequestRepository
}

// NewListRequestsHandler creates a new list payroll requests handler
func NewListRequestsHandler(repo domain.PayrollRequestRepository) *ListRequestsHandler {
	return &ListRequestsHandler{repo: repo}
}

// Handle returns pending requests first, then the newest.
func (h *ListRequestsHandler) Handle(ctx context.Context, query ListRequestsQuery) ([]domain.PayrollRequest, error) {
	switch query.Status {
	case "", domain.RequestStatusPending, domain.RequestStatusCompleted:
	default:
		return nil, domain.Invalid("status", "status must be %q or %q", domain.RequestStatusPending, domain.RequestStatusCompleted)
	}

	if query.Limit <= 0 {
		query.Limit = 100
	}
	if query.Limit > 500 {
		query.Limit = 500
	}

	requests, err := h.repo.List(ctx, domain.RequestFilter{
		Status:        query.Status,
		EmployeeEmail: domain.NormalizeEmail(query.EmployeeEmail),
		Limit:         query.Limit,
		Offset:        query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll requests: %w", err)
	}
	return requests, nil
}
