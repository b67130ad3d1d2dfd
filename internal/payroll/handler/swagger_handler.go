package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Payroll Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	if swaggerHandler == nil {
		swaggerHandler = httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
	}
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreatePayrollRequest godoc
// @Summary Create a payroll request
// @Description HR asks for an employee to be paid for a month. One request per employee and period (HR/Admin)
// @Tags Payroll Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{employeeId=string,employeeEmail=string,employeeName=string,salary=number,month=int,year=int,requestedBy=string} true "Payroll request"
// @Success 201 {object} object{success=bool,message=string,requestId=string}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,existingRequest=object}
// @Router /api/payroll-requests [post]
func (h *PayrollHandler) CreatePayrollRequestDoc() {}

// ListPayrollRequests godoc
// @Summary List payroll requests
// @Description Pending requests first, then newest first (HR/Admin)
// @Tags Payroll Requests
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending or completed"
// @Param email query string false "Employee email"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} object
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/payroll-requests [get]
func (h *PayrollHandler) ListPayrollRequestsDoc() {}

// ReconcilePayrollRequests godoc
// @Summary Reconcile payroll requests
// @Description Complete pending requests whose period is already paid (Admin only)
// @Tags Payroll Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{employeeEmail=string,month=int,year=int} false "Optional filter"
// @Success 200 {object} object{success=bool,data=object{scanned=int,completed=int,conflicts=int}}
// @Router /api/payroll-requests/reconcile [post]
func (h *PayrollHandler) ReconcilePayrollRequestsDoc() {}

// CreateCheckoutSession godoc
// @Summary Create a Stripe checkout session
// @Description Start a salary payment through Stripe Checkout (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{requestId=string,employeeEmail=string,employeeName=string,amount=number,month=int,year=int} true "Checkout data"
// @Success 200 {object} object{success=bool,sessionId=string,url=string,paymentDetails=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,existingPayment=object}
// @Failure 429 {object} object{success=bool,error=string}
// @Failure 502 {object} object{success=bool,error=string}
// @Router /api/create-checkout-session [post]
func (h *PayrollHandler) CreateCheckoutSessionDoc() {}

// ConfirmStripePayment godoc
// @Summary Confirm a Stripe payment
// @Description Record the payment for a paid checkout session. Safe to call more than once (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{sessionId=string} true "Checkout session"
// @Success 200 {object} object{success=bool,message=string,transactionId=string,payment=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,existingPayment=object,alreadyRecorded=bool}
// @Failure 502 {object} object{success=bool,error=string}
// @Router /api/confirm-stripe-payment [post]
func (h *PayrollHandler) ConfirmStripePaymentDoc() {}

// GetCheckoutSession godoc
// @Summary Get a checkout session
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param sessionId path string true "Checkout session ID"
// @Success 200 {object} object{success=bool,data=object{session=object}}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 502 {object} object{success=bool,error=string}
// @Router /api/checkout-session/{sessionId} [get]
func (h *PayrollHandler) GetCheckoutSessionDoc() {}

// ProcessPayment godoc
// @Summary Record a manual payment
// @Description Record a salary payment made outside Stripe (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{requestId=string,employeeEmail=string,employeeName=string,amount=number,month=int,year=int,transactionId=string,paymentMethod=string,cardLast4=string,cardholderName=string} true "Payment data"
// @Success 200 {object} object{success=bool,message=string,transactionId=string,payment=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,existingPayment=object}
// @Router /api/process-payment [post]
func (h *PayrollHandler) ProcessPaymentDoc() {}

// GetEmployeePayments godoc
// @Summary Get an employee's payments
// @Description Newest first. Employees may only read their own history
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param email path string true "Employee email"
// @Success 200 {array} object
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/payments/{email} [get]
func (h *PayrollHandler) GetEmployeePaymentsDoc() {}

// ListPayments godoc
// @Summary List all payments
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{payments=array,total=int}}
// @Router /api/payments [get]
func (h *PayrollHandler) ListPaymentsDoc() {}

// TestGateway godoc
// @Summary Check Stripe connectivity
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 502 {object} object{success=bool,error=string}
// @Router /api/test-stripe [get]
func (h *PayrollHandler) TestGatewayDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *PayrollHandler) HealthCheckDoc() {}
