package domain

import "context"

// Employee is the slice of the user directory payroll cares about.
type Employee struct {
	ID       string
	Email    string
	Name     string
	Role     string
	Verified bool
	Fired    bool
}

// EmployeeDirectory is the read-only user directory owned by another service.
type EmployeeDirectory interface {
	// FindByEmail returns ErrEmployeeNotFound when nobody has the address.
	FindByEmail(ctx context.Context, email string) (*Employee, error)
}
