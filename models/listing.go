package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a piece published by the shop on the public listings page.
// LikeCount, CommentCount and Liked are filled at read time.
type Listing struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	CreatedBy   uuid.UUID       `json:"created_by" gorm:"type:uuid;not null;<-:create"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Category    string          `json:"category" gorm:"type:varchar(64);not null"`
	Purity      string          `json:"purity" gorm:"type:varchar(32)"`
	GoldColor   string          `json:"gold_color" gorm:"type:varchar(64)"`
	Weight      decimal.Decimal `json:"weight" gorm:"type:numeric(10,2);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"type:text"`
	Images      ImageList       `json:"images" gorm:"type:text[]"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`

	LikeCount    int64 `json:"like_count" gorm:"->;-:migration"`
	CommentCount int64 `json:"comment_count" gorm:"->;-:migration"`
	Liked        bool  `json:"liked" gorm:"->;-:migration"`
}

type ListingLike struct {
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;primaryKey;<-:create"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;<-:create"`
	CreatedAt time.Time `json:"created_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type ListingComment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	ListingID  uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index;<-:create"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;<-:create"`
	AuthorName string    `json:"author_name" gorm:"type:varchar(255);not null"`
	Body       string    `json:"body" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type ListingInquiry struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	ListingID     uuid.UUID  `json:"listing_id" gorm:"type:uuid;not null;index;<-:create"`
	UserID        *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;<-:create"`
	Name          string     `json:"name" gorm:"type:varchar(255)"`
	ContactNumber string     `json:"contact_number" gorm:"type:varchar(32);not null"`
	Message       string     `json:"message" gorm:"type:text;not null"`
	CreatedAt     time.Time  `json:"created_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}
