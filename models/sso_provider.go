package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SSOProviderName string

const SSOProviderGoogle SSOProviderName = "google"

type SsoProvider struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	Name      SSOProviderName `gorm:"type:text;not null;unique;<-:create"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
