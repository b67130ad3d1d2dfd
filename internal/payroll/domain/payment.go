package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// A payment that exists is paid; there are no partial states.
const PaymentStatusPaid = "paid"

// Payment methods
const (
	MethodStripeCheckout = "stripe_checkout"
	MethodCreditCard     = "credit_card"
)

// Actors recorded in ProcessedBy / CompletedBy
const (
	ActorAdminConfirmation = "admin_confirmation"
	ActorAdmin             = "admin"
	ActorReconciliation    = "reconciliation"
)

// Payment is a settled salary payment. Rows are immutable once written.
type Payment struct {
	ID                     string            `json:"_id" gorm:"type:varchar(36);primaryKey"`
	EmployeeEmail          string            `json:"employeeEmail" gorm:"type:varchar(255);not null;uniqueIndex:unique_payment_per_month,priority:1"`
	EmployeeName           string            `json:"employeeName" gorm:"type:varchar(255);not null"`
	Amount                 float64           `json:"amount" gorm:"not null"`
	Month                  int               `json:"month" gorm:"not null;uniqueIndex:unique_payment_per_month,priority:2"`
	Year                   int               `json:"year" gorm:"not null;uniqueIndex:unique_payment_per_month,priority:3"`
	TransactionID          string            `json:"transactionId" gorm:"type:varchar(64);not null;uniqueIndex"`
	PaymentDate            time.Time         `json:"paymentDate" gorm:"not null;index"`
	Status                 string            `json:"status" gorm:"type:varchar(20);not null;default:'paid'"`
	PaymentMethod          string            `json:"paymentMethod" gorm:"type:varchar(50);not null"`
	GatewaySessionID       string            `json:"stripeSessionId,omitempty" gorm:"type:varchar(255);index"`
	GatewayPaymentIntentID string            `json:"stripePaymentIntentId,omitempty" gorm:"type:varchar(255)"`
	CardLast4              string            `json:"cardLast4,omitempty" gorm:"type:varchar(4)"`
	CardholderName         string            `json:"cardholderName,omitempty" gorm:"type:varchar(255)"`
	ProcessedBy            string            `json:"processedBy" gorm:"type:varchar(255);not null"`
	RequestID              string            `json:"requestId,omitempty" gorm:"type:varchar(36);index"`
	Metadata               datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate assigns the identifier and the paid state.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Status = PaymentStatusPaid
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	return nil
}

// Summary returns the fields shown when the period turns out to be paid.
func (p *Payment) Summary() PaymentSummary {
	return PaymentSummary{
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		EmployeeEmail: p.EmployeeEmail,
		EmployeeName:  p.EmployeeName,
		Month:         p.Month,
		Year:          p.Year,
		PaymentMethod: p.PaymentMethod,
	}
}

// PaymentRepository is the Payment Ledger. It exposes no update or delete.
type PaymentRepository interface {
	// Record inserts p. A conflicting (email, month, year) yields
	// *DuplicatePaymentError describing the stored payment.
	Record(ctx context.Context, p *Payment) error
	// FindByPeriod returns ErrPaymentNotFound when the period is unpaid.
	FindByPeriod(ctx context.Context, email string, month, year int) (*Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	// FindByEmployee returns newest payments first.
	FindByEmployee(ctx context.Context, email string) ([]Payment, error)
	FindAll(ctx context.Context, limit, offset int) ([]Payment, error)
}
