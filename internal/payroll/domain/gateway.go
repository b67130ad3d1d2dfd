package domain

import "context"

// Checkout session metadata keys. Confirmation reads the payment back out of
// these, so they must round-trip through the gateway unchanged.
const (
	MetaRequestID     = "requestId"
	MetaEmployeeEmail = "employeeEmail"
	MetaEmployeeName  = "employeeName"
	MetaMonth         = "month"
	MetaYear          = "year"
	MetaAmount        = "amount"
	MetaPaymentType   = "paymentType"

	PaymentTypeSalary = "salary_payment"
)

// Gateway payment statuses
const (
	SessionPaymentPaid              = "paid"
	SessionPaymentUnpaid            = "unpaid"
	SessionPaymentNoPaymentRequired = "no_payment_required"
)

// CheckoutRequest is what the orchestrator asks the gateway to charge.
type CheckoutRequest struct {
	RequestID     string
	EmployeeEmail string
	EmployeeName  string
	Amount        float64
	Month         int
	Year          int
}

// CheckoutSession is the redirect handed back to the caller.
type CheckoutSession struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"url"`
}

// GatewaySession is the gateway's view of a checkout session.
type GatewaySession struct {
	SessionID       string            `json:"id"`
	PaymentStatus   string            `json:"paymentStatus"`
	Status          string            `json:"status"`
	AmountTotal     int64             `json:"amountTotal"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customerEmail,omitempty"`
	CustomerID      string            `json:"customerId,omitempty"`
	PaymentIntentID string            `json:"paymentIntentId,omitempty"`
	Metadata        map[string]string `json:"metadata"`
}

// Paid reports whether the gateway has settled the session.
func (s *GatewaySession) Paid() bool {
	return s.PaymentStatus == SessionPaymentPaid
}

// Amount converts the minor-unit total back to a decimal amount.
func (s *GatewaySession) Amount() float64 {
	return float64(s.AmountTotal) / 100
}

// CheckoutGateway is the external payment gateway. Implementations never
// touch the ledgers. Failures are *GatewayError or ErrSessionNotFound.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*GatewaySession, error)
	Ping(ctx context.Context) error
}
