package repository

import (
	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

// AutoMigrate creates both ledgers together with their unique indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.PayrollRequest{}, &domain.Payment{})
}
