package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payroll request statuses
const (
	RequestStatusPending   = "pending"
	RequestStatusCompleted = "completed"
)

// PayrollRequest is a salary payment requested by HR before any money moves.
type PayrollRequest struct {
	ID               string     `json:"_id" gorm:"type:varchar(36);primaryKey"`
	EmployeeID       string     `json:"employeeId,omitempty" gorm:"type:varchar(64)"`
	EmployeeEmail    string     `json:"employeeEmail" gorm:"type:varchar(255);not null;uniqueIndex:unique_payroll_request_per_month,priority:1"`
	EmployeeName     string     `json:"employeeName" gorm:"type:varchar(255);not null"`
	Salary           float64    `json:"salary" gorm:"not null"`
	Month            int        `json:"month" gorm:"not null;uniqueIndex:unique_payroll_request_per_month,priority:2"`
	Year             int        `json:"year" gorm:"not null;uniqueIndex:unique_payroll_request_per_month,priority:3"`
	RequestedBy      string     `json:"requestedBy" gorm:"type:varchar(255);not null"`
	Status           string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt        time.Time  `json:"createdAt" gorm:"index"`
	ProcessedAt      *time.Time `json:"processedAt,omitempty"`
	TransactionID    string     `json:"transactionId,omitempty" gorm:"type:varchar(64)"`
	CompletedBy      string     `json:"completedBy,omitempty" gorm:"type:varchar(255)"`
	GatewaySessionID string     `json:"stripeSessionId,omitempty" gorm:"type:varchar(255)"`
}

// TableName specifies the table name
func (PayrollRequest) TableName() string {
	return "payroll_requests"
}

// BeforeCreate assigns the identifier.
func (r *PayrollRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	return nil
}

// IsPending reports whether money has not moved for this request yet.
func (r *PayrollRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Summary returns the identity of the request for conflict reporting.
func (r *PayrollRequest) Summary() RequestSummary {
	return RequestSummary{
		ID:            r.ID,
		EmployeeEmail: r.EmployeeEmail,
		Month:         r.Month,
		Year:          r.Year,
		Status:        r.Status,
		RequestedBy:   r.RequestedBy,
		CreatedAt:     r.CreatedAt,
	}
}

// Completion is the bookkeeping written when a request is paid.
type Completion struct {
	TransactionID    string
	CompletedBy      string
	GatewaySessionID string
	ProcessedAt      time.Time
}

// Complete moves the request from pending to completed. Completing again
// with the same transaction is a no-op (changed is false); completing with a
// different transaction is refused.
func (r *PayrollRequest) Complete(c Completion) (changed bool, err error) {
	if c.TransactionID == "" {
		return false, Invalid("transactionId", "transactionId is required to complete a payroll request")
	}

	switch r.Status {
	case RequestStatusCompleted:
		if r.TransactionID == c.TransactionID {
			return false, nil
		}
		return false, fmt.Errorf("%w: request %s holds %s, refusing %s",
			ErrCompletionConflict, r.ID, r.TransactionID, c.TransactionID)
	case RequestStatusPending:
	default:
		return false, fmt.Errorf("payroll request %s has unknown status %q", r.ID, r.Status)
	}

	processedAt := c.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	r.Status = RequestStatusCompleted
	r.TransactionID = c.TransactionID
	r.CompletedBy = c.CompletedBy
	r.GatewaySessionID = c.GatewaySessionID
	r.ProcessedAt = &processedAt
	return true, nil
}

// RequestFilter narrows a request listing.
type RequestFilter struct {
	Status        string
	EmployeeEmail string
	Month         int
	Year          int
	Limit         int
	Offset        int
}

// PayrollRequestRepository is the Payroll Request Ledger.
type PayrollRequestRepository interface {
	// Create inserts a pending request; a conflicting (email, month, year)
	// yields *DuplicateRequestError.
	Create(ctx context.Context, req *PayrollRequest) error
	FindByID(ctx context.Context, id string) (*PayrollRequest, error)
	FindByPeriod(ctx context.Context, email string, month, year int) (*PayrollRequest, error)
	// List returns pending requests first, then newest first.
	List(ctx context.Context, filter RequestFilter) ([]PayrollRequest, error)
	// MarkCompleted applies Complete atomically in storage.
	MarkCompleted(ctx context.Context, id string, c Completion) error
}
