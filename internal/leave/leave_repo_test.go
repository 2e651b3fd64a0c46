package leave_test

import (
	"context"
	"testing"
	"time"

	"peopledesk/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormOverMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	return gdb, mock
}

// The pool mock and the transaction mock are separate databases, so any
// statement landing on the wrong connection fails its expectations.
func TestLeaveRepository_WithTx(t *testing.T) {
	gdb, poolMock := newGormOverMock(t)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { txDB.Close() })

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	repo := leave.NewRepository(gdb).WithTx(tx)
	companyID := uuid.New().String()

	t.Run("status transition runs on the transaction", func(t *testing.T) {
		txMock.ExpectExec(`UPDATE "leave_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		moved, err := repo.TransitionStatus(context.Background(), companyID, uuid.New().String(),
			leave.StatusSubmitted, leave.StatusApproved, nil)

		assert.NoError(t, err)
		assert.True(t, moved)
	})

	t.Run("balance write runs on the transaction", func(t *testing.T) {
		txMock.ExpectExec(`UPDATE "leave_balances" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		b := &leave.LeaveBalance{
			ID:          uuid.New(),
			CompanyID:   uuid.New(),
			EmployeeID:  uuid.New(),
			PolicyID:    uuid.New(),
			PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Opening:     decimal.Zero,
			Accrued:     decimal.RequireFromString("25"),
			Taken:       decimal.RequireFromString("8"),
			Adjusted:    decimal.Zero,
		}
		b.Recompute()

		assert.NoError(t, repo.UpdateBalance(context.Background(), b))
	})

	assert.NoError(t, poolMock.ExpectationsWereMet())
	assert.NoError(t, txMock.ExpectationsWereMet())
}
