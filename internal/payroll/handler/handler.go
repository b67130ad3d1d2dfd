package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/query"
	"github.com/tair/empowhr-payroll/pkg/auth"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// PayrollHandler handles HTTP requests for the payroll workflow using CQRS pattern
type PayrollHandler struct {
	// Command handlers
	createRequestHandler *command.CreateRequestHandler
	initiateHandler      *command.InitiatePaymentHandler
	confirmHandler       *command.ConfirmPaymentHandler
	manualHandler        *command.RecordManualPaymentHandler
	reconcileHandler     *command.ReconcileRequestsHandler

	// Query handlers
	listRequestsHandler     *query.ListRequestsHandler
	employeePaymentsHandler *query.GetEmployeePaymentsHandler
	listPaymentsHandler     *query.ListPaymentsHandler
	sessionHandler          *query.GetCheckoutSessionHandler
	pingHandler             *query.PingGatewayHandler

	middlewareConfig MiddlewareConfig
}

// NewPayrollHandlerWithDI creates a new payroll handler using dependency injection
func NewPayrollHandlerWithDI(
	createRequestHandler *command.CreateRequestHandler,
	initiateHandler *command.InitiatePaymentHandler,
	confirmHandler *command.ConfirmPaymentHandler,
	manualHandler *command.RecordManualPaymentHandler,
	reconcileHandler *command.ReconcileRequestsHandler,
	listRequestsHandler *query.ListRequestsHandler,
	employeePaymentsHandler *query.GetEmployeePaymentsHandler,
	listPaymentsHandler *query.ListPaymentsHandler,
	sessionHandler *query.GetCheckoutSessionHandler,
	pingHandler *query.PingGatewayHandler,
	middlewareConfig MiddlewareConfig,
) *PayrollHandler {
	return &PayrollHandler{
		createRequestHandler:    createRequestHandler,
		initiateHandler:         initiateHandler,
		confirmHandler:          confirmHandler,
		manualHandler:           manualHandler,
		reconcileHandler:        reconcileHandler,
		listRequestsHandler:     listRequestsHandler,
		employeePaymentsHandler: employeePaymentsHandler,
		listPaymentsHandler:     listPaymentsHandler,
		sessionHandler:          sessionHandler,
		pingHandler:             pingHandler,
		middlewareConfig:        middlewareConfig,
	}
}

// Response is the JSON envelope. The flat fields after Error are the ones
// the payroll dashboard reads directly.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`

	RequestID       string                 `json:"requestId,omitempty"`
	SessionID       string                 `json:"sessionId,omitempty"`
	URL             string                 `json:"url,omitempty"`
	PaymentDetails  *PaymentDetails        `json:"paymentDetails,omitempty"`
	TransactionID   string                 `json:"transactionId,omitempty"`
	Payment         *domain.Payment        `json:"payment,omitempty"`
	ExistingPayment *domain.PaymentSummary `json:"existingPayment,omitempty"`
	ExistingRequest *domain.RequestSummary `json:"existingRequest,omitempty"`
	AlreadyRecorded bool                   `json:"alreadyRecorded,omitempty"`
}

// PaymentDetails echoes what the admin is about to pay through checkout.
type PaymentDetails struct {
	RequestID    string  `json:"requestId,omitempty"`
	EmployeeName string  `json:"employeeName"`
	Amount       float64 `json:"amount"`
	Month        string  `json:"month"`
	Year         int     `json:"year"`
}

type createRequestBody struct {
	EmployeeID    string  `json:"employeeId"`
	EmployeeEmail string  `json:"employeeEmail"`
	EmployeeName  string  `json:"employeeName"`
	Salary        float64 `json:"salary"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	RequestedBy   string  `json:"requestedBy"`
}

type checkoutBody struct {
	RequestID     string  `json:"requestId"`
	EmployeeEmail string  `json:"employeeEmail"`
	EmployeeName  string  `json:"employeeName"`
	Amount        float64 `json:"amount"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
}

type manualPaymentBody struct {
	checkoutBody
	TransactionID  string `json:"transactionId"`
	PaymentMethod  string `json:"paymentMethod"`
	CardLast4      string `json:"cardLast4"`
	CardholderName string `json:"cardholderName"`
}

type reconcileBody struct {
	EmployeeEmail string `json:"employeeEmail"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
}

// CreatePayrollRequest handles POST /api/payroll-requests
func (h *PayrollHandler) CreatePayrollRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	requestedBy := body.RequestedBy
	if requestedBy == "" {
		requestedBy = callerEmail(r.Context())
	}

	req, err := h.createRequestHandler.Handle(r.Context(), command.CreateRequestCommand{
		EmployeeID:    body.EmployeeID,
		EmployeeEmail: body.EmployeeEmail,
		EmployeeName:  body.EmployeeName,
		Salary:        body.Salary,
		Month:         body.Month,
		Year:          body.Year,
		RequestedBy:   requestedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success:   true,
		Message:   "Payroll request created successfully",
		RequestID: req.ID,
		Data:      req,
	})
}

// ListPayrollRequests handles GET /api/payroll-requests
func (h *PayrollHandler) ListPayrollRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	requests, err := h.listRequestsHandler.Handle(r.Context(), query.ListRequestsQuery{
		Status:        q.Get("status"),
		EmployeeEmail: q.Get("email"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// ReconcilePayrollRequests handles POST /api/payroll-requests/reconcile
func (h *PayrollHandler) ReconcilePayrollRequests(w http.ResponseWriter, r *http.Request) {
	var body reconcileBody
	// an empty body reconciles everything
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}

	result, err := h.reconcileHandler.Handle(r.Context(), command.ReconcileRequestsCommand{
		EmployeeEmail: body.EmployeeEmail,
		Month:         body.Month,
		Year:          body.Year,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Payroll requests reconciled",
		Data:    result,
	})
}

// CreateCheckoutSession handles POST /api/create-checkout-session
func (h *PayrollHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := h.initiateHandler.Handle(r.Context(), command.InitiatePaymentCommand{
		RequestID:     body.RequestID,
		EmployeeEmail: body.EmployeeEmail,
		EmployeeName:  body.EmployeeName,
		Amount:        body.Amount,
		Month:         body.Month,
		Year:          body.Year,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success:   true,
		SessionID: result.Session.SessionID,
		URL:       result.Session.RedirectURL,
		PaymentDetails: &PaymentDetails{
			RequestID:    result.RequestID,
			EmployeeName: result.EmployeeName,
			Amount:       result.Amount,
			Month:        domain.MonthName(result.Month),
			Year:         result.Year,
		},
	})
}

// ConfirmStripePayment handles POST /api/confirm-stripe-payment
func (h *PayrollHandler) ConfirmStripePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := h.confirmHandler.Handle(r.Context(), command.ConfirmPaymentCommand{SessionID: body.SessionID})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.AlreadyRecorded {
		existing := result.Payment.Summary()
		respondJSON(w, http.StatusConflict, Response{
			Success:         false,
			Error:           (&domain.DuplicatePaymentError{Existing: existing}).Error(),
			TransactionID:   existing.TransactionID,
			ExistingPayment: &existing,
			AlreadyRecorded: true,
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success:       true,
		Message:       "Payment confirmed and recorded",
		TransactionID: result.Payment.TransactionID,
		Payment:       result.Payment,
	})
}

// GetCheckoutSession handles GET /api/checkout-session/{sessionId}
func (h *PayrollHandler) GetCheckoutSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionHandler.Handle(r.Context(), query.GetCheckoutSessionQuery{
		SessionID: mux.Vars(r)["sessionId"],
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    map[string]interface{}{"session": session},
	})
}

// ProcessPayment handles POST /api/process-payment
func (h *PayrollHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var body manualPaymentBody
	if !decodeBody(w, r, &body) {
		return
	}

	payment, err := h.manualHandler.Handle(r.Context(), command.RecordManualPaymentCommand{
		RequestID:      body.RequestID,
		EmployeeEmail:  body.EmployeeEmail,
		EmployeeName:   body.EmployeeName,
		Amount:         body.Amount,
		Month:          body.Month,
		Year:           body.Year,
		TransactionID:  body.TransactionID,
		PaymentMethod:  body.PaymentMethod,
		CardLast4:      body.CardLast4,
		CardholderName: body.CardholderName,
		ProcessedBy:    callerEmail(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success:       true,
		Message:       "Payment processed successfully",
		TransactionID: payment.TransactionID,
		Payment:       payment,
	})
}

// GetEmployeePayments handles GET /api/payments/{email}
func (h *PayrollHandler) GetEmployeePayments(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if claims, ok := ClaimsFromContext(r.Context()); ok &&
		!claims.HasRole(auth.RoleHR, auth.RoleAdmin) &&
		claims.Email != domain.NormalizeEmail(email) {
		respondJSON(w, http.StatusForbidden, Response{
			Success: false,
			Error:   "You can only view your own payments",
		})
		return
	}

	payments, err := h.employeePaymentsHandler.Handle(r.Context(), query.GetEmployeePaymentsQuery{EmployeeEmail: email})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payments)
}

// ListPayments handles GET /api/payments
func (h *PayrollHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.listPaymentsHandler.Handle(r.Context(), query.ListPaymentsQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"payments": payments,
			"total":    len(payments),
		},
	})
}

// TestGateway handles GET /api/test-stripe
func (h *PayrollHandler) TestGateway(w http.ResponseWriter, r *http.Request) {
	if err := h.pingHandler.Handle(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stripe connection successful",
	})
}

// GetMiddlewareConfig returns middleware configuration
func (h *PayrollHandler) GetMiddlewareConfig() MiddlewareConfig {
	return h.middlewareConfig
}

// RegisterRoutes registers all payroll routes
func (h *PayrollHandler) RegisterRoutes(router *mux.Router) {
	mc := h.GetMiddlewareConfig()
	staff := mc.RequireRoles(auth.RoleHR, auth.RoleAdmin)
	admin := mc.RequireRoles(auth.RoleAdmin)
	limited := mc.RateLimit

	// HR and admin
	router.HandleFunc("/api/payroll-requests", staff(h.CreatePayrollRequest)).Methods("POST")
	router.HandleFunc("/api/payroll-requests", staff(h.ListPayrollRequests)).Methods("GET")

	// Admin only; money-moving routes are rate limited
	router.HandleFunc("/api/payroll-requests/reconcile", admin(h.ReconcilePayrollRequests)).Methods("POST")
	router.HandleFunc("/api/create-checkout-session", admin(limited(h.CreateCheckoutSession))).Methods("POST")
	router.HandleFunc("/api/confirm-stripe-payment", admin(limited(h.ConfirmStripePayment))).Methods("POST")
	router.HandleFunc("/api/process-payment", admin(limited(h.ProcessPayment))).Methods("POST")
	router.HandleFunc("/api/checkout-session/{sessionId}", admin(h.GetCheckoutSession)).Methods("GET")
	router.HandleFunc("/api/payments", admin(h.ListPayments)).Methods("GET")
	router.HandleFunc("/api/test-stripe", admin(h.TestGateway)).Methods("GET")

	// Any authenticated caller; ownership is checked in the handler
	router.HandleFunc("/api/payments/{email}", mc.RequireAuth(h.GetEmployeePayments)).Methods("GET")
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// RegisterHealthCheck registers health check endpoint
func (h *PayrollHandler) RegisterHealthCheck(router *mux.Router, db HealthChecker) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db(r.Context()); err != nil {
			logger.Error(r.Context()).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Payroll service is healthy",
		})
	}).Methods("GET")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Invalid request body")
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return false
	}
	return true
}

func callerEmail(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Email
	}
	return ""
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func trimBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
