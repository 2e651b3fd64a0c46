package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
	// TransitionStatus flips the status only when the row is still in
	// fromStatus; returns false when another caller got there first.
	TransitionStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, fields map[string]any) (bool, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)

	FindPolicy(ctx context.Context, companyID, policyID string) (*LeavePolicy, error)
	CreatePolicy(ctx context.Context, p *LeavePolicy) error
	UpdatePolicy(ctx context.Context, p *LeavePolicy) error
	FindAllPolicies(ctx context.Context, companyID string) ([]LeavePolicy, error)

	FindBalanceForPeriod(ctx context.Context, companyID, employeeID, policyID string, start, end time.Time) (*LeaveBalance, error)
	UpdateBalance(ctx context.Context, b *LeaveBalance) error
	FindBalancesByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequest, error) {
	db := r.conn(ctx).
		Preload("Employee").
		Where("company_id = ?", companyID)

	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var requests []LeaveRequest
	err := db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Save(l).Error
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": toStatus}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindPolicy(ctx context.Context, companyID, policyID string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		First(&p, "id = ?", policyID).Error
	return &p, err
}

func (r *repository) CreatePolicy(ctx context.Context, p *LeavePolicy) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) UpdatePolicy(ctx context.Context, p *LeavePolicy) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) FindAllPolicies(ctx context.Context, companyID string) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Order("code ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) FindBalanceForPeriod(ctx context.Context, companyID, employeeID, policyID string, start, end time.Time) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("policy_id = ?", policyID).
		Where("period_start <= ? AND period_end >= ?", start, end).
		First(&b).Error
	return &b, err
}

func (r *repository) UpdateBalance(ctx context.Context, b *LeaveBalance) error {
	return r.conn(ctx).Save(b).Error
}

func (r *repository) FindBalancesByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("period_start DESC").
		Find(&balances).Error
	return balances, err
}
