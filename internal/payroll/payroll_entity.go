package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CycleStatusOpen       = "OPEN"
	CycleStatusProcessing = "PROCESSING"
	CycleStatusClosed     = "CLOSED"
)

// PayrollCycle is the monthly (or custom period) payroll container.
type PayrollCycle struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_cycles_company"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'OPEN'"`

	TotalGross decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`
	Notes      string          `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// PayrollDocument is the metadata row for an uploaded payslip or report;
// the bytes live in object storage.
type PayrollDocument struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CycleID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;index"`

	FileName   string `gorm:"type:varchar(255);not null"`
	PublicID   string `gorm:"type:varchar(255);not null"`
	SecureURL  string `gorm:"type:text;not null"`
	Format     string `gorm:"type:varchar(10)"`
	SizeBytes  int    `gorm:"not null;default:0"`
	Visibility string `gorm:"type:varchar(10);not null;default:'PRIVATE'"`

	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
