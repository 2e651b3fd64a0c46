package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	UnitDays  = "DAYS"
	UnitHours = "HOURS"
)

type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	PolicyID   uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time       `gorm:"type:date;not null"`
	EndDate   time.Time       `gorm:"type:date;not null"`
	Unit      string          `gorm:"type:varchar(10);not null;default:'DAYS'"`
	Quantity  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Reason    string          `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_leave_requests_company_status"`
	// Set when the requested quantity exceeded the closing balance at creation
	// time. Creation still succeeds; the approver sees the flag.
	ExceedsBalance bool `gorm:"not null;default:false"`

	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy     *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	DecisionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Employee *RequestEmployee `gorm:"foreignKey:EmployeeID;references:ID"`
}

// RequestEmployee is the minimal join projection for list/display fields.
type RequestEmployee struct {
	ID       uuid.UUID `gorm:"primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (RequestEmployee) TableName() string {
	return "employees"
}

type LeavePolicy struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(30);not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Unit      string    `gorm:"type:varchar(10);not null;default:'DAYS'"`

	AccrualAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	AccrualPeriod string          `gorm:"type:varchar(20);not null;default:'MONTHLY'"`
	CarryOverCap  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// LeaveBalance is a per-employee, per-policy, per-period ledger row. The
// accounting identity closing = opening + accrued - taken + adjusted must
// hold after every mutation; recompute is the only way closing changes.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_balances_employee_policy"`
	PolicyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_balances_employee_policy"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`

	Opening  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Accrued  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Taken    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Adjusted decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Closing  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recompute restores the accounting identity after any component changed.
func (b *LeaveBalance) Recompute() {
	b.Closing = b.Opening.Add(b.Accrued).Sub(b.Taken).Add(b.Adjusted)
}
