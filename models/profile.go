package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;<-:create"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255)"`
	Email       string    `json:"email" gorm:"type:varchar(255)"`
	AvatarURL   string    `json:"avatar_url" gorm:"type:text"`
	Phone       string    `json:"phone" gorm:"type:varchar(32)"`
	Address     string    `json:"address" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
