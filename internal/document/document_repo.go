package document

import (
	"context"
	"database/sql"

	"peopledesk/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, d *Document) error
	Delete(ctx context.Context, companyID, id string) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Document, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Document, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, d *Document) error {
	return r.conn(ctx).Create(d).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Where("company_id = ?", companyID).
		Delete(&Document{}, "id = ?", id).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Document, error) {
	var d Document
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Document, error) {
	var docs []Document
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", employeeID, companyID).
		Count(&count).Error
	return count > 0, err
}
