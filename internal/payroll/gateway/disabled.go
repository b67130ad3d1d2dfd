package gateway

import (
	"context"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// Disabled stands in when no Stripe key is configured. Manual payments and
// ledger reads keep working; every gateway call fails as unavailable.
type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	return nil, errDisabled()
}

func (Disabled) RetrieveSession(context.Context, string) (*domain.GatewaySession, error) {
	return nil, errDisabled()
}

func (Disabled) Ping(context.Context) error {
	return errDisabled()
}

func errDisabled() error {
	return domain.NewGatewayError(domain.GatewayUnavailable, "payment gateway is disabled", nil)
}
