package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperuser = "SUPERUSER"
	RoleAdmin     = "ADMIN"
	RoleEmployee  = "EMPLOYEE"
)

const (
	StatusActive                 = "ACTIVE"
	StatusPendingSetup           = "PENDING_SETUP"
	StatusPasswordResetPending   = "PASSWORD_RESET_PENDING"
	StatusPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	StatusSuspended              = "SUSPENDED"
	StatusInactive               = "INACTIVE"
)

type Account struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:varchar(255)"`
	Role      string    `gorm:"column:role;type:varchar(50);not null;default:EMPLOYEE"`

	PasswordHash string `gorm:"column:password_hash;type:text"`
	IsActive     bool   `gorm:"column:is_active;default:false"`
	// AccountStatus is authoritative when populated; older rows derive it from
	// is_active plus the password timestamps (see Status).
	AccountStatus *string `gorm:"column:account_status;type:varchar(30)"`

	// Identity-provider side id for this account, set on invitation.
	ExternalID string `gorm:"column:external_id;type:text"`

	FailedLoginAttempts      int        `gorm:"column:failed_login_attempts;not null;default:0"`
	LockedUntil              *time.Time `gorm:"column:locked_until"`
	LastPasswordChangeAt     *time.Time `gorm:"column:last_password_change_at"`
	PasswordResetRequestedAt *time.Time `gorm:"column:password_reset_requested_at"`
	PasswordResetCompletedAt *time.Time `gorm:"column:password_reset_completed_at"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// LinkedEmployee is the minimal employee projection the provisioning flow
// needs; the employee module owns the full record.
type LinkedEmployee struct {
	ID        uuid.UUID  `gorm:"primaryKey"`
	CompanyID uuid.UUID  `gorm:"column:company_id"`
	AccountID *uuid.UUID `gorm:"column:account_id"`
	FullName  string     `gorm:"column:full_name"`
	Email     string     `gorm:"column:email"`
}

func (LinkedEmployee) TableName() string {
	return "employees"
}
