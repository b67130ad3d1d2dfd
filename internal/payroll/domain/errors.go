package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateRequest    = errors.New("duplicate payroll request")
	ErrDuplicatePayment    = errors.New("duplicate payment")
	ErrTransactionIDInUse  = errors.New("transaction id already used")
	ErrRequestNotFound     = errors.New("payroll request not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrAlreadyProcessed    = errors.New("payroll request already processed")
	ErrCompletionConflict  = errors.New("payroll request already completed by another transaction")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrSessionNotFound     = errors.New("checkout session not found")

	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrRateLimited           = errors.New("payment gateway rate limited")
	ErrInvalidPaymentRequest = errors.New("invalid payment request")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RequestSummary is what a caller needs to explain a request conflict.
type RequestSummary struct {
	ID            string    `json:"id"`
	EmployeeEmail string    `json:"employeeEmail"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	Status        string    `json:"status"`
	RequestedBy   string    `json:"requestedBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DuplicateRequestError is returned when a request already exists for the
// employee and period.
type DuplicateRequestError struct {
	Existing RequestSummary
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("Payroll request already exists for %s %d",
		MonthName(e.Existing.Month), e.Existing.Year)
}

func (e *DuplicateRequestError) Unwrap() error {
	return ErrDuplicateRequest
}

// PaymentSummary identifies the payment that won a period.
type PaymentSummary struct {
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	EmployeeEmail string    `json:"employeeEmail"`
	EmployeeName  string    `json:"employeeName"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	PaymentMethod string    `json:"paymentMethod"`
}

// DuplicatePaymentError is returned when the period is already paid. It
// always carries the existing payment.
type DuplicatePaymentError struct {
	Existing PaymentSummary
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("Payment already exists for %s %d. Transaction ID: %s",
		MonthName(e.Existing.Month), e.Existing.Year, e.Existing.TransactionID)
}

func (e *DuplicatePaymentError) Unwrap() error {
	return ErrDuplicatePayment
}

// GatewayErrorKind classifies failures of the external payment gateway.
type GatewayErrorKind string

const (
	GatewayUnavailable    GatewayErrorKind = "gateway_unavailable"
	RateLimited           GatewayErrorKind = "rate_limited"
	InvalidPaymentRequest GatewayErrorKind = "invalid_payment_request"
)

// GatewayError preserves the kind of a gateway failure so callers can choose
// between retrying and fixing input.
type GatewayError struct {
	Kind    GatewayErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrGatewayUnavailable:
		return e.Kind == GatewayUnavailable
	case ErrRateLimited:
		return e.Kind == RateLimited
	case ErrInvalidPaymentRequest:
		return e.Kind == InvalidPaymentRequest
	}
	return false
}

// NewGatewayError builds a GatewayError.
func NewGatewayError(kind GatewayErrorKind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}
