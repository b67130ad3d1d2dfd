package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

const pendingFirst = "CASE WHEN status = '" + domain.RequestStatusPending + "' THEN 0 ELSE 1 END"

// GormRequestRepository stores payroll requests.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Create(ctx context.Context, req *domain.PayrollRequest) error {
	req.Status = domain.RequestStatusPending
	err := r.db.WithContext(ctx).Create(req).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("failed to create payroll request: %w", err)
	}

	existing, findErr := r.FindByPeriod(ctx, req.EmployeeEmail, req.Month, req.Year)
	if findErr != nil {
		return fmt.Errorf("payroll request conflict for %s %d/%d: %w", req.EmployeeEmail, req.Month, req.Year, findErr)
	}
	return &domain.DuplicateRequestError{Existing: existing.Summary()}
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id string) (*domain.PayrollRequest, error) {
	var req domain.PayrollRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll request %s: %w", id, err)
	}
	return &req, nil
}

func (r *GormRequestRepository) FindByPeriod(ctx context.Context, email string, month, year int) (*domain.PayrollRequest, error) {
	var req domain.PayrollRequest
	err := r.db.WithContext(ctx).
		Where("employee_email = ? AND month = ? AND year = ?", email, month, year).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll request: %w", err)
	}
	return &req, nil
}

func (r *GormRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.PayrollRequest, error) {
	q := r.db.WithContext(ctx).Model(&domain.PayrollRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EmployeeEmail != "" {
		q = q.Where("employee_email = ?", filter.EmployeeEmail)
	}
	if filter.Month != 0 {
		q = q.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		q = q.Where("year = ?", filter.Year)
	}

	var requests []domain.PayrollRequest
	err := q.Order(pendingFirst).
		Order("created_at DESC").
		Limit(limitOrDefault(filter.Limit)).
		Offset(filter.Offset).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll requests: %w", err)
	}
	return requests, nil
}

// MarkCompleted only ever touches a pending row. When nothing matched, the
// stored row decides between an idempotent repeat and a conflict.
func (r *GormRequestRepository) MarkCompleted(ctx context.Context, id string, c domain.Completion) error {
	if c.TransactionID == "" {
		return domain.Invalid("transactionId", "transactionId is required to complete a payroll request")
	}
	if c.ProcessedAt.IsZero() {
		c.ProcessedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).Model(&domain.PayrollRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":             domain.RequestStatusCompleted,
			"transaction_id":     c.TransactionID,
			"completed_by":       c.CompletedBy,
			"gateway_session_id": c.GatewaySessionID,
			"processed_at":       c.ProcessedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete payroll request %s: %w", id, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = current.Complete(c)
	return err
}
