package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/balance"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/metrics"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

var tracer = otel.Tracer("payroll-gateway")

// Config configures the Stripe Checkout adapter.
type Config struct {
	SecretKey        string
	Currency         string
	ClientURL        string
	Timeout          time.Duration
	ProductImageURL  string
	AllowedCountries []string
	BreakerFailures  int
	BreakerCooldown  time.Duration
	// APIURL overrides the Stripe API base URL.
	APIURL string
}

// StripeGateway creates and reads Stripe Checkout sessions. It never
// touches the ledgers.
type StripeGateway struct {
	cfg      Config
	sessions session.Client
	balances balance.Client
	breaker  *CircuitBreaker
}

// NewStripeGateway builds a gateway with its own bounded HTTP client and
// network retries disabled.
func NewStripeGateway(cfg Config) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	backendCfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &StripeGateway{
		cfg:      cfg,
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
		balances: balance.Client{B: backend, Key: cfg.SecretKey},
		breaker: NewCircuitBreaker("stripe", cfg.BreakerFailures, cfg.BreakerCooldown, func(err error) bool {
			return errors.Is(err, domain.ErrGatewayUnavailable)
		}),
	}, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (g *StripeGateway) Breaker() *CircuitBreaker {
	return g.breaker
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	ctx, span := tracer.Start(ctx, "gateway.CreateCheckoutSession",
		trace.WithAttributes(
			attribute.String("employee.email", req.EmployeeEmail),
			attribute.Int("period.month", req.Month),
			attribute.Int("period.year", req.Year),
			attribute.Float64("payment.amount", req.Amount),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := g.sessionParams(req)
	params.Context = ctx

	started := time.Now()
	var created *stripe.CheckoutSession
	err := g.breaker.Call(func() error {
		var callErr error
		created, callErr = g.sessions.New(params)
		return mapError(callErr)
	})
	if err != nil {
		err = mapError(err)
		g.fail(ctx, span, "create_session", started, err)
		return nil, err
	}

	metrics.ObserveGatewayCall("create_session", metrics.OutcomeSuccess, started)
	span.SetAttributes(attribute.String("gateway.session_id", created.ID))
	logger.Info(ctx).
		Str("session_id", created.ID).
		Str("employee_email", req.EmployeeEmail).
		Int("month", req.Month).
		Int("year", req.Year).
		Msg("Checkout session created")

	return &domain.CheckoutSession{SessionID: created.ID, RedirectURL: created.URL}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*domain.GatewaySession, error) {
	ctx, span := tracer.Start(ctx, "gateway.RetrieveSession",
		trace.WithAttributes(attribute.String("gateway.session_id", sessionID)),
	)
	defer span.End()

	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.Invalid("sessionId", "sessionId is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	started := time.Now()
	var s *stripe.CheckoutSession
	err := g.breaker.Call(func() error {
		var callErr error
		s, callErr = g.sessions.Get(sessionID, params)
		return mapError(callErr)
	})
	if err != nil {
		err = mapError(err)
		g.fail(ctx, span, "retrieve_session", started, err)
		return nil, err
	}

	metrics.ObserveGatewayCall("retrieve_session", metrics.OutcomeSuccess, started)
	gs := toGatewaySession(s)
	span.SetAttributes(attribute.String("gateway.payment_status", gs.PaymentStatus))
	return gs, nil
}

// Ping checks that the configured key can reach Stripe.
func (g *StripeGateway) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "gateway.Ping")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := &stripe.BalanceParams{}
	params.Context = ctx

	started := time.Now()
	err := g.breaker.Call(func() error {
		_, callErr := g.balances.Get(params)
		return mapError(callErr)
	})
	if err != nil {
		err = mapError(err)
		g.fail(ctx, span, "ping", started, err)
		return err
	}
	metrics.ObserveGatewayCall("ping", metrics.OutcomeSuccess, started)
	return nil
}

func (g *StripeGateway) fail(ctx context.Context, span trace.Span, operation string, started time.Time, err error) {
	outcome := "not_found"
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		outcome = string(gwErr.Kind)
	}
	metrics.ObserveGatewayCall(operation, outcome, started)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Warn(ctx).
		Err(err).
		Str("operation", operation).
		Str("outcome", outcome).
		Msg("Payment gateway call failed")
}

func (g *StripeGateway) sessionParams(req domain.CheckoutRequest) *stripe.CheckoutSessionParams {
	period := fmt.Sprintf("%s %d", domain.MonthName(req.Month), req.Year)

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String("Salary Payment - " + req.EmployeeName),
		Description: stripe.String("Salary payment for " + period),
	}
	if g.cfg.ProductImageURL != "" {
		product.Images = stripe.StringSlice([]string{g.cfg.ProductImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(g.cfg.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:               stripe.String(g.cfg.ClientURL + "/payment-success?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(g.cfg.ClientURL + "/dashboard/admin/payroll?canceled=true"),
		CustomerEmail:            stripe.String(req.EmployeeEmail),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
	}
	if len(g.cfg.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(g.cfg.AllowedCountries),
		}
	}

	params.AddMetadata(domain.MetaRequestID, req.RequestID)
	params.AddMetadata(domain.MetaEmployeeEmail, req.EmployeeEmail)
	params.AddMetadata(domain.MetaEmployeeName, req.EmployeeName)
	params.AddMetadata(domain.MetaMonth, strconv.Itoa(req.Month))
	params.AddMetadata(domain.MetaYear, strconv.Itoa(req.Year))
	params.AddMetadata(domain.MetaAmount, strconv.FormatFloat(req.Amount, 'f', 2, 64))
	params.AddMetadata(domain.MetaPaymentType, domain.PaymentTypeSalary)
	return params
}

// ToMinorUnits converts a decimal amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func toGatewaySession(s *stripe.CheckoutSession) *domain.GatewaySession {
	gs := &domain.GatewaySession{
		SessionID:     s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Status:        string(s.Status),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if gs.Metadata == nil {
		gs.Metadata = map[string]string{}
	}
	if s.CustomerDetails != nil && gs.CustomerEmail == "" {
		gs.CustomerEmail = s.CustomerDetails.Email
	}
	if s.Customer != nil {
		gs.CustomerID = s.Customer.ID
	}
	if s.PaymentIntent != nil {
		gs.PaymentIntentID = s.PaymentIntent.ID
	}
	return gs
}

// mapError classifies a Stripe failure. Missing sessions become
// domain.ErrSessionNotFound; everything else becomes *domain.GatewayError.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) || errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	if errors.Is(err, ErrCircuitOpen) {
		return domain.NewGatewayError(domain.GatewayUnavailable, "payment service temporarily unavailable", err)
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// network failure, timeout or cancellation
		return domain.NewGatewayError(domain.GatewayUnavailable, "payment service temporarily unavailable", err)
	}

	switch {
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests || stripeErr.Code == stripe.ErrorCodeRateLimit:
		return domain.NewGatewayError(domain.RateLimited, "too many requests, please try again later", err)
	case stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, stripeErr.Msg)
	case stripeErr.Type == stripe.ErrorTypeCard:
		return domain.NewGatewayError(domain.InvalidPaymentRequest, "payment card error: "+stripeErr.Msg, err)
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest || stripeErr.Type == stripe.ErrorTypeIdempotency:
		return domain.NewGatewayError(domain.InvalidPaymentRequest, "invalid payment request: "+stripeErr.Msg, err)
	case stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 &&
		stripeErr.HTTPStatusCode != http.StatusUnauthorized && stripeErr.HTTPStatusCode != http.StatusForbidden:
		return domain.NewGatewayError(domain.InvalidPaymentRequest, "invalid payment request: "+stripeErr.Msg, err)
	default:
		return domain.NewGatewayError(domain.GatewayUnavailable, "payment service temporarily unavailable", err)
	}
}

// stripeLogger routes stripe-go's own logging through zerolog.
type stripeLogger struct{}

func (stripeLogger) Debugf(format string, v ...interface{}) {
	l := logger.Component("stripe")
	l.Debug().Msgf(format, v...)
}

func (stripeLogger) Infof(format string, v ...interface{}) {
	l := logger.Component("stripe")
	l.Debug().Msgf(format, v...)
}

func (stripeLogger) Warnf(format string, v ...interface{}) {
	l := logger.Component("stripe")
	l.Warn().Msgf(format, v...)
}

func (stripeLogger) Errorf(format string, v ...interface{}) {
	l := logger.Component("stripe")
	l.Error().Msgf(format, v...)
}
