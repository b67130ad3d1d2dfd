//go:build wireinject
// +build wireinject

package payroll

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/handler"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/query"
)

// ProvideRequestRepository provides the traced payroll request repository
func ProvideRequestRepository(db *gorm.DB) domain.PayrollRequestRepository {
	return repository.NewTracedRequestRepository(db)
}

// ProvidePaymentRepository provides the traced payment repository
func ProvidePaymentRepository(db *gorm.DB) domain.PaymentRepository {
	return repository.NewTracedPaymentRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRequestRepository,
	ProvidePaymentRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateRequestHandler,
	command.NewInitiatePaymentHandler,
	command.NewConfirmPaymentHandler,
	command.NewRecordManualPaymentHandler,
	command.NewReconcileRequestsHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewListRequestsHandler,
	query.NewGetEmployeePaymentsHandler,
	query.NewListPaymentsHandler,
	query.NewGetCheckoutSessionHandler,
	query.NewPingGatewayHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHandler initializes the payroll HTTP handler with all dependencies
func InitializeHandler(
	db *gorm.DB,
	gateway domain.CheckoutGateway,
	directory domain.EmployeeDirectory,
	publisher command.PaymentEventPublisher,
	middlewareConfig handler.MiddlewareConfig,
) (*handler.PayrollHandler, error) {
	wire.Build(
		AllHandlersSet,
		handler.NewPayrollHandlerWithDI,
	)
	return nil, nil
}

// InitializeReconciler builds the reconciliation handler used by the CLI
// and the Kafka consumer.
func InitializeReconciler(db *gorm.DB) (*command.ReconcileRequestsHandler, error) {
	wire.Build(
		RepositorySet,
		command.NewReconcileRequestsHandler,
	)
	return nil, nil
}
