package command

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/metrics"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

const (
	reconcileBatchSize   = 100
	reconcileConcurrency = 4
)

// ReconcileRequestsCommand narrows a reconciliation pass. Zero values match
// every pending request.
type ReconcileRequestsCommand struct {
	EmployeeEmail string
	Month         int
	Year          int
}

// ReconcileResult counts what a pass did.
type ReconcileResult struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Conflicts int `json:"conflicts"`
}

// ReconcileRequestsHandler completes pending requests whose period is already
// paid, using the stored payment's transaction id. It runs only on demand.
type ReconcileRequestsHandler struct {
	requests domain.PayrollRequestRepository
	payments domain.PaymentRepository
}

// NewReconcileRequestsHandler creates a new reconcile requests handler
func NewReconcileRequestsHandler(requests domain.PayrollRequestRepository, payments domain.PaymentRepository) *ReconcileRequestsHandler {
	return &ReconcileRequestsHandler{requests: requests, payments: payments}
}

// Handle executes the reconcile command
func (h *ReconcileRequestsHandler) Handle(ctx context.Context, cmd ReconcileRequestsCommand) (*ReconcileResult, error) {
	filter := domain.RequestFilter{
		Status:        domain.RequestStatusPending,
		EmployeeEmail: domain.NormalizeEmail(cmd.EmployeeEmail),
		Month:         cmd.Month,
		Year:          cmd.Year,
		Limit:         reconcileBatchSize,
	}

	var result ReconcileResult
	for {
		batch, err := h.requests.List(ctx, filter)
		if err != nil {
			return &result, err
		}

		var completed, conflicts atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(reconcileConcurrency)
		for i := range batch {
			req := batch[i]
			g.Go(func() error {
				done, err := h.reconcileOne(gctx, &req)
				switch {
				case errors.Is(err, domain.ErrCompletionConflict):
					conflicts.Add(1)
					return nil
				case err != nil:
					return err
				case done:
					completed.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return &result, err
		}

		result.Scanned += len(batch)
		result.Completed += int(completed.Load())
		result.Conflicts += int(conflicts.Load())

		if len(batch) < filter.Limit {
			break
		}
		// completed requests drop out of the pending set
		filter.Offset += len(batch) - int(completed.Load())
	}

	metrics.RequestsReconciledTotal.Add(float64(result.Completed))
	logger.Info(ctx).
		Int("scanned", result.Scanned).
		Int("completed", result.Completed).
		Int("conflicts", result.Conflicts).
		Msg("Payroll request reconciliation finished")
	return &result, nil
}

func (h *ReconcileRequestsHandler) reconcileOne(ctx context.Context, req *domain.PayrollRequest) (bool, error) {
	payment, err := h.payments.FindByPeriod(ctx, req.EmployeeEmail, req.Month, req.Year)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = h.requests.MarkCompleted(ctx, req.ID, domain.Completion{
		TransactionID:    payment.TransactionID,
		CompletedBy:      domain.ActorReconciliation,
		GatewaySessionID: payment.GatewaySessionID,
	})
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("request_id", req.ID).
			Str("transaction_id", payment.TransactionID).
			Msg("Failed to reconcile payroll request")
		return false, err
	}

	logger.Info(ctx).
		Str("request_id", req.ID).
		Str("transaction_id", payment.TransactionID).
		Msg("Payroll request reconciled")
	return true, nil
}
