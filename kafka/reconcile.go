package kafka

import (
	"context"

	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
)

// ReconcileOnPayment completes the pending request for the event's period.
// It repairs completions that failed after the payment was stored.
func ReconcileOnPayment(h *command.ReconcileRequestsHandler) EventHandler {
	return func(ctx context.Context, event PaymentRecordedEvent) error {
		_, err := h.Handle(ctx, command.ReconcileRequestsCommand{
			EmployeeEmail: event.EmployeeEmail,
			Month:         event.Month,
			Year:          event.Year,
		})
		return err
	}
}
