package timesheet

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Timesheet) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Timesheet, error)
	FindByEmployeeAndWeek(ctx context.Context, companyID, employeeID string, weekStart time.Time) (*Timesheet, error)
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]Timesheet, error)
	ReplaceEntries(ctx context.Context, t *Timesheet, entries []TimesheetEntry) error
	// TransitionStatus flips the status only when the row is still in
	// fromStatus; returns false when another caller got there first.
	TransitionStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, fields map[string]any) (bool, error)
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

func (r *repository) Create(ctx context.Context, t *Timesheet) error {
	return r.conn(ctx).Create(t).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Timesheet, error) {
	var t Timesheet
	err := r.conn(ctx).
		Preload("Entries").
		Where("company_id = ?", companyID).
		First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindByEmployeeAndWeek(ctx context.Context, companyID, employeeID string, weekStart time.Time) (*Timesheet, error) {
	var t Timesheet
	err := r.conn(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("week_start = ?", weekStart).
		First(&t).Error
	return &t, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]Timesheet, error) {
	db := r.conn(ctx).
		Preload("Entries").
		Where("company_id = ?", companyID)

	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var timesheets []Timesheet
	err := db.Order("week_start DESC").Find(&timesheets).Error
	return timesheets, err
}

func (r *repository) ReplaceEntries(ctx context.Context, t *Timesheet, entries []TimesheetEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", t.ID).Delete(&TimesheetEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		t.Entries = entries
		return tx.Save(t).Error
	})
}

func (r *repository) TransitionStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": toStatus}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.conn(ctx).
		Model(&Timesheet{}).
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
