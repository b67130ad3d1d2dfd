package query

import (
	"context"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// PingGatewayHandler checks connectivity to the payment gateway.
type PingGatewayHandler struct {
	gateway domain.CheckoutGateway
}

func NewPingGatewayHandler(gateway domain.CheckoutGateway) *PingGatewayHandler {
	return &PingGatewayHandler{gateway: gateway}
}

func (h *PingGatewayHandler) Handle(ctx context.Context) error {
	return h.gateway.Ping(ctx)
}
