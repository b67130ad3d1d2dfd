package handler

import (
	"errors"
	"net/http"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

// writeError maps domain errors onto HTTP statuses. Every handler funnels
// failures through here.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var (
		dupPayment *domain.DuplicatePaymentError
		dupRequest *domain.DuplicateRequestError
		gwErr      *domain.GatewayError
	)

	switch {
	case errors.As(err, &dupPayment):
		existing := dupPayment.Existing
		respondJSON(w, http.StatusConflict, Response{
			Success:         false,
			Error:           err.Error(),
			ExistingPayment: &existing,
		})
	case errors.As(err, &dupRequest):
		existing := dupRequest.Existing
		respondJSON(w, http.StatusConflict, Response{
			Success:         false,
			Error:           err.Error(),
			ExistingRequest: &existing,
		})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domain.ErrRequestNotFound), errors.Is(err, domain.ErrSessionNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyProcessed), errors.Is(err, domain.ErrCompletionConflict),
		errors.Is(err, domain.ErrTransactionIDInUse):
		respondJSON(w, http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.As(err, &gwErr):
		writeGatewayError(w, r, gwErr)
	default:
		logger.Error(ctx).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Internal server error",
		})
	}
}

func writeGatewayError(w http.ResponseWriter, r *http.Request, err *domain.GatewayError) {
	logger.Warn(r.Context()).
		Err(err).
		Str("kind", string(err.Kind)).
		Str("path", r.URL.Path).
		Msg("Payment gateway call failed")

	switch err.Kind {
	case domain.RateLimited:
		w.Header().Set("Retry-After", "30")
		respondJSON(w, http.StatusTooManyRequests, Response{
			Success: false,
			Error:   "Too many requests. Please try again later.",
		})
	case domain.InvalidPaymentRequest:
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid payment request: " + err.Message,
		})
	default:
		respondJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Payment service temporarily unavailable. Please try again.",
		})
	}
}
