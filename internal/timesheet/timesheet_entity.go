package timesheet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// Timesheet is a weekly container; the daily lines live in Entries.
type Timesheet struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_timesheets_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_timesheets_employee_week,unique"`
	WeekStart  time.Time `gorm:"type:date;not null;index:idx_timesheets_employee_week,unique"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_timesheets_company_status"`

	SubmittedAt    *time.Time
	ApprovedBy     *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	DecisionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Entries []TimesheetEntry `gorm:"foreignKey:TimesheetID;constraint:OnDelete:CASCADE"`
}

type TimesheetEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TimesheetID uuid.UUID `gorm:"type:uuid;not null;index"`

	WorkDate    time.Time       `gorm:"type:date;not null"`
	Hours       decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	ProjectCode string          `gorm:"type:varchar(30)"`
	Notes       string          `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalHours sums the entry lines.
func (t *Timesheet) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Hours)
	}
	return total
}
