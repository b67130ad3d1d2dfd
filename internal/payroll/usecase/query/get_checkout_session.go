package query

import (
	"context"
	"strings"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// GetCheckoutSessionQuery represents the query to read a gateway session
type GetCheckoutSessionQuery struct {
	SessionID string
}

// GetCheckoutSessionHandler reads a session straight from the gateway.
type GetCheckoutSessionHandler struct {
	gateway domain.CheckoutGateway
}

// NewGetCheckoutSessionHandler creates a new get checkout session handler
func NewGetCheckoutSessionHandler(gateway domain.CheckoutGateway) *GetCheckoutSessionHandler {
	return &GetCheckoutSessionHandler{gateway: gateway}
}

// Handle executes the get checkout session query
func (h *GetCheckoutSessionHandler) Handle(ctx context.Context, query GetCheckoutSessionQuery) (*domain.GatewaySession, error) {
	id := strings.TrimSpace(query.SessionID)
	if id == "" {
		return nil, domain.Invalid("sessionId", "sessionId is required")
	}
	return h.gateway.RetrieveSession(ctx, id)
}
