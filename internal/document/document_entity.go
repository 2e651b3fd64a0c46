package document

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryContract    = "CONTRACT"
	CategoryIdentity    = "IDENTITY"
	CategoryCertificate = "CERTIFICATE"
	CategoryOther       = "OTHER"
)

// Document is the metadata row for an employee file; the bytes live in
// object storage.
type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_company"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_employee"`

	Category   string `gorm:"type:varchar(20);not null;default:'OTHER'"`
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

func validCategory(c string) bool {
	switch c {
	case CategoryContract, CategoryIdentity, CategoryCertificate, CategoryOther:
		return true
	}
	return false
}
