package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
)

var (
	tracer         = otel.Tracer("payroll-directory")
	tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// SQLDirectory reads employees from the users table owned by the identity
// service. It never writes.
type SQLDirectory struct {
	db    *sql.DB
	query string
}

// NewSQLDirectory creates a directory over table.
func NewSQLDirectory(db *sql.DB, table string) (*SQLDirectory, error) {
	if table == "" {
		table = "users"
	}
	if !tableNameRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid users table name %q", table)
	}
	return &SQLDirectory{
		db: db,
		query: fmt.Sprintf(`
		SELECT id, email, name, role, is_verified, is_fired
		FROM %s
		WHERE LOWER(email) = $1
	`, table),
	}, nil
}

// FindByEmail retrieves an employee by normalized email
func (d *SQLDirectory) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	ctx, span := tracer.Start(ctx, "directory.FindByEmail",
		trace.WithAttributes(attribute.String("employee.email", email)),
	)
	defer span.End()

	var (
		e        domain.Employee
		name     sql.NullString
		role     sql.NullString
		verified sql.NullBool
		fired    sql.NullBool
	)
	err := d.db.QueryRowContext(ctx, d.query, email).Scan(&e.ID, &e.Email, &name, &role, &verified, &fired)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("employee.found", false))
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	e.Name = name.String
	e.Role = role.String
	e.Verified = verified.Bool
	e.Fired = fired.Bool
	span.SetAttributes(attribute.Bool("employee.found", true))
	return &e, nil
}

// CheckPayable rejects employees the directory says must not be paid.
func CheckPayable(ctx context.Context, dir domain.EmployeeDirectory, email string) (*domain.Employee, error) {
	e, err := dir.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, domain.Invalid("employeeEmail", "no employee with email %s", email)
	}
	if err != nil {
		return nil, err
	}
	if e.Fired {
		return nil, domain.Invalid("employeeEmail", "employee %s has been fired", email)
	}
	if !e.Verified {
		return nil, domain.Invalid("employeeEmail", "employee %s is not verified", email)
	}
	return e, nil
}
