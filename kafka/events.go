package kafka

import "time"

// PaymentRecordedEvent announces a payment written to the payment ledger.
type PaymentRecordedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	PaymentID     string    `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
	RequestID     string    `json:"request_id,omitempty"`
	EmployeeEmail string    `json:"employee_email"`
	EmployeeName  string    `json:"employee_name"`
	Amount        float64   `json:"amount"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	PaymentMethod string    `json:"payment_method"`
	ProcessedBy   string    `json:"processed_by"`
	PaymentDate   time.Time `json:"payment_date"`
	Timestamp     time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypePaymentRecorded = "payroll.payment.recorded"
)

// Kafka topics
const (
	TopicPaymentRecorded = "payroll-payment-recorded"
)
