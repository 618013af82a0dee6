package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserIdentity links a user to the subject claim issued by one SSO provider.
type UserIdentity struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	SsoProviderID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_identity_sso_provider_id_user_id,where:deleted_at IS NULL;uniqueIndex:idx_user_identity_sso_provider_id_identity,where:deleted_at IS NULL;not null;<-:create"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_identity_sso_provider_id_user_id,where:deleted_at IS NULL;not null;<-:create"`
	Identity      string    `gorm:"type:text;uniqueIndex:idx_user_identity_sso_provider_id_identity,where:deleted_at IS NULL;not null;<-:create"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	SsoProvider *SsoProvider `gorm:"foreignKey:SsoProviderID"`
	User        *User        `gorm:"foreignKey:UserID"`
}
