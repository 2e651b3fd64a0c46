package account

import (
	"context"
	"database/sql"
	"time"

	"peopledesk/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Account, error)
	// IncrementFailedLogins bumps the failure counter in a single UPDATE and
	// stamps locked_until once the new count reaches maxAttempts, so
	// concurrent failures never lose an increment.
	IncrementFailedLogins(ctx context.Context, accountID string, maxAttempts int, lockUntil time.Time) error

	FindEmployee(ctx context.Context, employeeID string) (*LinkedEmployee, error)
	FindEmployeeByAccount(ctx context.Context, accountID string) (*LinkedEmployee, error)
	// LinkEmployee sets employee.account_id only when the employee is still
	// unlinked; returns false when another caller won the race.
	LinkEmployee(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error)
	UnlinkEmployee(ctx context.Context, accountID string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn routes statements through the bound transaction when one is set.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, a *Account) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Account) error {
	return r.conn(ctx).Save(a).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Unscoped().Delete(&Account{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := r.conn(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.conn(ctx).First(&a, "email = ?", email).Error
	return &a, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Account, error) {
	var accounts []Account
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&accounts).Error
	return accounts, err
}

func (r *repository) IncrementFailedLogins(ctx context.Context, accountID string, maxAttempts int, lockUntil time.Time) error {
	return r.conn(ctx).
		Model(&Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
			"locked_until": gorm.Expr(
				"CASE WHEN failed_login_attempts + 1 >= ? THEN ? ELSE locked_until END",
				maxAttempts, lockUntil,
			),
		}).Error
}

func (r *repository) FindEmployee(ctx context.Context, employeeID string) (*LinkedEmployee, error) {
	var e LinkedEmployee
	err := r.conn(ctx).First(&e, "id = ?", employeeID).Error
	return &e, err
}

func (r *repository) FindEmployeeByAccount(ctx context.Context, accountID string) (*LinkedEmployee, error) {
	var e LinkedEmployee
	err := r.conn(ctx).First(&e, "account_id = ?", accountID).Error
	return &e, err
}

func (r *repository) LinkEmployee(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error) {
	res := r.conn(ctx).
		Model(&LinkedEmployee{}).
		Where("id = ? AND account_id IS NULL", employeeID).
		Update("account_id", accountID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UnlinkEmployee(ctx context.Context, accountID string) error {
	return r.conn(ctx).
		Model(&LinkedEmployee{}).
		Where("account_id = ?", accountID).
		Update("account_id", nil).Error
}
