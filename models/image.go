package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is the upload log used for per-user hourly rate limiting.
type Image struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	Url        string    `gorm:"type:text;not null;<-:create"`
	CreatedAt  time.Time `gorm:"index"`

	Uploader *User `gorm:"foreignKey:UploaderID"`
}
