package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Accepted year range for payroll periods
const (
	MinYear = 2000
	MaxYear = 2100
)

// NormalizeEmail lower-cases and trims an address. Both ledgers key on the
// normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks a normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return Invalid("employeeEmail", "employeeEmail is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalid("employeeEmail", "employeeEmail %q is not a valid address", email)
	}
	return nil
}

// ValidatePeriod checks month and year bounds.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return Invalid("month", "month must be between 1 and 12, got %d", month)
	}
	if year < MinYear || year > MaxYear {
		return Invalid("year", "year must be between %d and %d, got %d", MinYear, MaxYear, year)
	}
	return nil
}

// ValidateAmount checks a salary or payment amount.
func ValidateAmount(field string, amount float64) error {
	if amount <= 0 {
		return Invalid(field, "%s must be greater than 0", field)
	}
	return nil
}

// MonthName renders a 1-based month, e.g. 3 -> "March".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return time.Month(month).String()
}
