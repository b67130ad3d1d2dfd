package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/empowhr-payroll/internal/payroll/directory"
	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/payrolltest"
)

func TestSQLDirectory(t *testing.T) {
	ctx := context.Background()
	gdb := payrolltest.NewDB(t)
	require.NoError(t, gdb.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY, email TEXT UNIQUE, name TEXT, role TEXT, is_verified BOOLEAN, is_fired BOOLEAN)`).Error)
	require.NoError(t, gdb.Exec(`INSERT INTO users VALUES
		('1', 'Alice@co.com', 'Alice', 'employee', true, false),
		('2', 'bob@co.com', 'Bob', 'employee', true, true),
		('3', 'carol@co.com', NULL, 'employee', false, false)`).Error)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	dir, err := directory.NewSQLDirectory(sqlDB, "users")
	require.NoError(t, err)

	alice, err := dir.FindByEmail(ctx, "alice@co.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.True(t, alice.Verified)

	_, err = dir.FindByEmail(ctx, "nobody@co.com")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	_, err = directory.CheckPayable(ctx, dir, "alice@co.com")
	assert.NoError(t, err)
	_, err = directory.CheckPayable(ctx, dir, "bob@co.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = directory.CheckPayable(ctx, dir, "carol@co.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = directory.CheckPayable(ctx, dir, "nobody@co.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewSQLDirectoryRejectsBadTable(t *testing.T) {
	_, err := directory.NewSQLDirectory(nil, "users; DROP TABLE payments")
	assert.Error(t, err)
}
