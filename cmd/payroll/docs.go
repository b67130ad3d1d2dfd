package main

// @title Payroll Service API
// @version 1.0
// @description Payroll requests, Stripe checkout and the payment ledger, with full observability (Prometheus, Jaeger)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @host localhost:8083
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Payroll Requests
// @tag.description HR payroll requests

// @tag.name Payments
// @tag.description Stripe checkout and the payment ledger

// @tag.name Health
// @tag.description Health check endpoints
