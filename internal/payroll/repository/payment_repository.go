package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// GormPaymentRepository is the append-only payment ledger.
type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Record inserts a payment. Losing the race for a period is reported as
// *domain.DuplicatePaymentError describing the row that won. A transaction id
// already held by another period is domain.ErrTransactionIDInUse.
func (r *GormPaymentRepository) Record(ctx context.Context, payment *domain.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	existing, findErr := r.FindByPeriod(ctx, payment.EmployeeEmail, payment.Month, payment.Year)
	if errors.Is(findErr, domain.ErrPaymentNotFound) {
		// the period is free; the conflict was on transaction_id
		return fmt.Errorf("%w: %s", domain.ErrTransactionIDInUse, payment.TransactionID)
	}
	if findErr != nil {
		return fmt.Errorf("payment conflict for %s %d/%d: %w", payment.EmployeeEmail, payment.Month, payment.Year, findErr)
	}
	return &domain.DuplicatePaymentError{Existing: existing.Summary()}
}

func (r *GormPaymentRepository) FindByPeriod(ctx context.Context, email string, month, year int) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).
		Where("employee_email = ? AND month = ? AND year = ?", email, month, year).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", transactionID, err)
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByEmployee(ctx context.Context, email string) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("employee_email = ?", email).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for %s: %w", email, err)
	}
	return payments, nil
}

func (r *GormPaymentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Limit(limitOrDefault(limit)).Offset(offset).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
