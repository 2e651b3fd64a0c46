package payroll

import (
	"context"
	"database/sql"

	"peopledesk/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateCycle(ctx context.Context, c *PayrollCycle) error
	UpdateCycle(ctx context.Context, c *PayrollCycle) error
	FindCycle(ctx context.Context, companyID, id string) (*PayrollCycle, error)
	FindAllCycles(ctx context.Context, companyID string) ([]PayrollCycle, error)

	CreateDocument(ctx context.Context, d *PayrollDocument) error
	DeleteDocument(ctx context.Context, companyID, id string) error
	FindDocument(ctx context.Context, companyID, id string) (*PayrollDocument, error)
	FindDocumentsByCycle(ctx context.Context, companyID, cycleID string) ([]PayrollDocument, error)
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

func (r *repository) CreateCycle(ctx context.Context, c *PayrollCycle) error {
	return r.conn(ctx).Create(c).Error
}

func (r *repository) UpdateCycle(ctx context.Context, c *PayrollCycle) error {
	return r.conn(ctx).Save(c).Error
}

func (r *repository) FindCycle(ctx context.Context, companyID, id string) (*PayrollCycle, error) {
	var c PayrollCycle
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindAllCycles(ctx context.Context, companyID string) ([]PayrollCycle, error) {
	var cycles []PayrollCycle
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("period_start DESC").
		Find(&cycles).Error
	return cycles, err
}

func (r *repository) CreateDocument(ctx context.Context, d *PayrollDocument) error {
	return r.conn(ctx).Create(d).Error
}

func (r *repository) DeleteDocument(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Where("company_id = ?", companyID).
		Delete(&PayrollDocument{}, "id = ?", id).Error
}

func (r *repository) FindDocument(ctx context.Context, companyID, id string) (*PayrollDocument, error) {
	var d PayrollDocument
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindDocumentsByCycle(ctx context.Context, companyID, cycleID string) ([]PayrollDocument, error) {
	var docs []PayrollDocument
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("cycle_id = ?", cycleID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}
