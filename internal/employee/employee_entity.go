package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusActive     = "ACTIVE"
	StatusInactive   = "INACTIVE"
	StatusTerminated = "TERMINATED"
	StatusOnLeave    = "ON_LEAVE"
)

const (
	EmploymentFullTime   = "FULL_TIME"
	EmploymentPartTime   = "PART_TIME"
	EmploymentContractor = "CONTRACTOR"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index:idx_employees_company"`
	EmployeeNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_employees_company_number,composite:company_id"`
	FullName       string    `gorm:"type:varchar(150);not null;column:full_name"`
	Email          string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_employees_company_email,composite:company_id"`

	EmploymentType string    `gorm:"type:varchar(20);not null;default:'FULL_TIME'"`
	Position       string    `gorm:"type:varchar(100)"`
	HireDate       time.Time `gorm:"type:date;not null"`

	BaseSalary   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	SalaryPeriod string          `gorm:"type:varchar(20);not null;default:'MONTHLY'"`

	Status    string     `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ManagerID *uuid.UUID `gorm:"type:uuid"`
	AccountID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_employees_account_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
