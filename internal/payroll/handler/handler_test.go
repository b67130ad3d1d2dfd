package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/payrolltest"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/query"
	"github.com/tair/empowhr-payroll/pkg/auth"
)

type server struct {
	router  *mux.Router
	gateway *payrolltest.FakeGateway
}

func newServer(t *testing.T, mc MiddlewareConfig) *server {
	t.Helper()
	db := payrolltest.NewDB(t)
	requests := repository.NewGormRequestRepository(db)
	payments := repository.NewGormPaymentRepository(db)
	gw := payrolltest.NewFakeGateway()

	h := NewPayrollHandlerWithDI(
		command.NewCreateRequestHandler(requests, nil),
		command.NewInitiatePaymentHandler(requests, payments, gw),
		command.NewConfirmPaymentHandler(payments, requests, gw, nil),
		command.NewRecordManualPaymentHandler(payments, requests, nil),
		command.NewReconcileRequestsHandler(requests, payments),
		query.NewListRequestsHandler(requests),
		query.NewGetEmployeePaymentsHandler(payments),
		query.NewListPaymentsHandler(payments),
		query.NewGetCheckoutSessionHandler(gw),
		query.NewPingGatewayHandler(gw),
		mc,
	)

	router := mux.NewRouter()
	RegisterMiddlewares(router, mc)
	h.RegisterRoutes(router)
	h.RegisterHealthCheck(router, func(context.Context) error { return nil })
	return &server{router: router, gateway: gw}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestPayrollFlowOverHTTP(t *testing.T) {
	s := newServer(t, MiddlewareConfig{EnableMetrics: true})

	rec := s.do(t, http.MethodPost, "/api/payroll-requests", "", map[string]interface{}{
		"employeeEmail": "Alice@Co.com", "employeeName": "Alice", "salary": 2500, "month": 3, "year": 2024, "requestedBy": "hr@co.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := decode(t, rec).RequestID
	require.NotEmpty(t, requestID)

	rec = s.do(t, http.MethodPost, "/api/payroll-requests", "", map[string]interface{}{
		"employeeEmail": "alice@co.com", "employeeName": "Alice", "salary": 2500, "month": 3, "year": 2024, "requestedBy": "hr@co.com",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	dupReq := decode(t, rec)
	require.NotNil(t, dupReq.ExistingRequest)
	assert.Equal(t, requestID, dupReq.ExistingRequest.ID)
	assert.Equal(t, "Payroll request already exists for March 2024", dupReq.Error)

	rec = s.do(t, http.MethodPost, "/api/create-checkout-session", "", map[string]interface{}{"requestId": requestID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkout := decode(t, rec)
	require.NotEmpty(t, checkout.SessionID)
	assert.NotEmpty(t, checkout.URL)
	require.NotNil(t, checkout.PaymentDetails)
	assert.Equal(t, "March", checkout.PaymentDetails.Month)
	assert.Equal(t, 2500.0, checkout.PaymentDetails.Amount)

	rec = s.do(t, http.MethodPost, "/api/confirm-stripe-payment", "", map[string]string{"sessionId": checkout.SessionID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unpaid session must not be recorded")

	s.gateway.Settle(checkout.SessionID)
	rec = s.do(t, http.MethodPost, "/api/confirm-stripe-payment", "", map[string]string{"sessionId": checkout.SessionID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decode(t, rec)
	require.NotNil(t, confirmed.Payment)
	assert.Regexp(t, `^STRIPE_\d+_[0-9A-F]{9}$`, confirmed.TransactionID)

	rec = s.do(t, http.MethodPost, "/api/confirm-stripe-payment", "", map[string]string{"sessionId": checkout.SessionID})
	require.Equal(t, http.StatusConflict, rec.Code)
	again := decode(t, rec)
	assert.True(t, again.AlreadyRecorded)
	require.NotNil(t, again.ExistingPayment)
	assert.Equal(t, confirmed.TransactionID, again.ExistingPayment.TransactionID)

	rec = s.do(t, http.MethodPost, "/api/create-checkout-session", "", map[string]interface{}{"requestId": requestID})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, decode(t, rec).ExistingPayment)

	rec = s.do(t, http.MethodPost, "/api/create-checkout-session", "", map[string]interface{}{
		"employeeEmail": "alice@co.com", "employeeName": "Alice", "amount": 2500, "month": 3, "year": 2024,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, decode(t, rec).ExistingPayment)
	assert.Equal(t, confirmed.TransactionID, decode(t, rec).ExistingPayment.TransactionID)

	rec = s.do(t, http.MethodPost, "/api/process-payment", "", map[string]interface{}{
		"employeeEmail": "alice@co.com", "employeeName": "Alice", "amount": 2500, "month": 3, "year": 2024,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "Payment already exists for March 2024. Transaction ID: "+confirmed.TransactionID)

	rec = s.do(t, http.MethodGet, "/api/payments/alice@co.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []domain.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, confirmed.TransactionID, history[0].TransactionID)

	rec = s.do(t, http.MethodGet, "/api/payroll-requests", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var requests []domain.PayrollRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
	require.Len(t, requests, 1)
	assert.Equal(t, domain.RequestStatusCompleted, requests[0].Status)
	assert.Equal(t, confirmed.TransactionID, requests[0].TransactionID)
}

func TestManualPaymentAndSessionRoutes(t *testing.T) {
	s := newServer(t, MiddlewareConfig{})

	rec := s.do(t, http.MethodPost, "/api/process-payment", "", map[string]interface{}{
		"employeeEmail": "bob@co.com", "employeeName": "Bob", "amount": 1800, "month": 1, "year": 2025,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Regexp(t, `^TXN_\d+_[0-9A-F]{9}$`, resp.TransactionID)
	assert.Equal(t, command.DefaultCardLast4, resp.Payment.CardLast4)

	rec = s.do(t, http.MethodPost, "/api/process-payment", "", map[string]interface{}{"employeeEmail": "bob@co.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/checkout-session/cs_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/payments?limit=5", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/test-stripe", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.gateway.Err = domain.NewGatewayError(domain.RateLimited, "slow down", nil)
	rec = s.do(t, http.MethodPost, "/api/create-checkout-session", "", map[string]interface{}{
		"employeeEmail": "carol@co.com", "employeeName": "Carol", "amount": 100, "month": 2, "year": 2025,
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	s.gateway.Err = domain.NewGatewayError(domain.GatewayUnavailable, "down", nil)
	rec = s.do(t, http.MethodGet, "/api/test-stripe", "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/payroll-requests/reconcile", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/payroll-requests", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWriteErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.Invalid("amount", "amount must be positive"), http.StatusBadRequest},
		{"duplicate payment", &domain.DuplicatePaymentError{Existing: domain.PaymentSummary{TransactionID: "TXN_1", Month: 3, Year: 2024}}, http.StatusConflict},
		{"duplicate request", &domain.DuplicateRequestError{Existing: domain.RequestSummary{ID: "r1", Month: 3, Year: 2024}}, http.StatusConflict},
		{"request not found", domain.ErrRequestNotFound, http.StatusNotFound},
		{"session not found", domain.ErrSessionNotFound, http.StatusNotFound},
		{"already processed", domain.ErrAlreadyProcessed, http.StatusConflict},
		{"transaction id in use", fmt.Errorf("%w: TXN_1", domain.ErrTransactionIDInUse), http.StatusConflict},
		{"not completed", domain.ErrPaymentNotCompleted, http.StatusBadRequest},
		{"rate limited", domain.NewGatewayError(domain.RateLimited, "x", nil), http.StatusTooManyRequests},
		{"invalid payment", domain.NewGatewayError(domain.InvalidPaymentRequest, "x", nil), http.StatusBadRequest},
		{"unavailable", domain.NewGatewayError(domain.GatewayUnavailable, "x", nil), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.want, rec.Code)

			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAuthAndRoles(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", "")
	s := newServer(t, DefaultMiddlewareConfig(verifier, nil))

	token := func(email, role string) string {
		tok, err := verifier.Sign(email, role, time.Hour)
		require.NoError(t, err)
		return tok
	}
	admin := token("admin@co.com", auth.RoleAdmin)
	hr := token("hr@co.com", auth.RoleHR)
	alice := token("alice@co.com", auth.RoleEmployee)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/payroll-requests", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/payroll-requests", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/payroll-requests", alice, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payroll-requests", hr, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/payments", hr, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payments", admin, nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payments/alice@co.com", alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/payments/bob@co.com", alice, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payments/bob@co.com", hr, nil).Code)

	// requestedBy falls back to the caller
	rec := s.do(t, http.MethodPost, "/api/payroll-requests", hr, map[string]interface{}{
		"employeeEmail": "bob@co.com", "employeeName": "Bob", "salary": 1000, "month": 5, "year": 2024,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data, ok := decode(t, rec).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hr@co.com", data["requestedBy"])

	// manual payments are attributed to the signed-in admin
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/process-payment", hr, nil).Code)
	rec = s.do(t, http.MethodPost, "/api/process-payment", admin, map[string]interface{}{
		"employeeEmail": "bob@co.com", "employeeName": "Bob", "amount": 1000, "month": 5, "year": 2024,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	manual := decode(t, rec)
	require.NotNil(t, manual.Payment)
	assert.Equal(t, "admin@co.com", manual.Payment.ProcessedBy)

	rec = s.do(t, http.MethodGet, "/api/payroll-requests?email=bob@co.com", hr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var requests []domain.PayrollRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
	require.Len(t, requests, 1)
	assert.Equal(t, "admin@co.com", requests[0].CompletedBy)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	limiter := NewRateLimiter(client, 1, time.Minute)
	called := 0
	h := limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/api/process-payment", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, called)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
