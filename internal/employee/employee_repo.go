package employee

import (
	"context"
	"database/sql"

	"peopledesk/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, companyID, id string) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindOptions(ctx context.Context, companyID string) ([]EmployeeOption, error)
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.conn(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Where("company_id = ?", companyID).
		Delete(&Employee{}, "id = ?", id).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("employee_number ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindOptions(ctx context.Context, companyID string) ([]EmployeeOption, error) {
	var options []EmployeeOption
	err := r.conn(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusActive).
		Order("full_name ASC").
		Select("id", "employee_number", "full_name").
		Find(&options).Error
	return options, err
}
