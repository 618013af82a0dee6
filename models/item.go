package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusRejected ItemStatus = "rejected"
	StatusSold     ItemStatus = "sold"
	StatusPawned   ItemStatus = "pawned"
)

// Statuses lists every item status in console tab order.
var Statuses = []ItemStatus{StatusPending, StatusApproved, StatusRejected, StatusSold, StatusPawned}

func (s ItemStatus) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

type ItemType string

const (
	ItemTypeSell ItemType = "sell"
	ItemTypePawn ItemType = "pawn"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeSell || t == ItemTypePawn
}

// Item is a gold piece submitted by a user for sale or pawn.
// ItemType never changes after creation; Status moves along the lifecycle edges only.
type Item struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	UserID        uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index;<-:create"`
	Title         string          `json:"title" gorm:"type:varchar(255);not null"`
	Category      string          `json:"category" gorm:"type:varchar(64);not null"`
	GoldColor     string          `json:"gold_color" gorm:"type:varchar(64);not null"`
	GoldOrigin    string          `json:"gold_origin" gorm:"type:varchar(64);not null"`
	Purity        string          `json:"purity" gorm:"type:varchar(32);not null"`
	Weight        decimal.Decimal `json:"weight" gorm:"type:numeric(10,2);not null"`
	Brand         string          `json:"brand" gorm:"type:varchar(255)"`
	Details       string          `json:"details" gorm:"type:text"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	ItemType      ItemType        `json:"item_type" gorm:"type:varchar(8);not null;index;<-:create"`
	Status        ItemStatus      `json:"status" gorm:"type:varchar(16);not null;index"`
	ImageURL      string          `json:"image_url" gorm:"type:text"`
	Images        ImageList       `json:"images" gorm:"type:text[]"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`

	SellRequest *SellRequest `json:"sell_request,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	PawnRequest *PawnRequest `json:"pawn_request,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// StoredImages returns the primary image followed by the additional ones.
func (i *Item) StoredImages() []string {
	if i.ImageURL == "" {
		return nil
	}
	urls := make([]string, 0, len(i.Images)+1)
	urls = append(urls, i.ImageURL)
	for _, url := range i.Images {
		if url != "" && url != i.ImageURL {
			urls = append(urls, url)
		}
	}
	return urls
}
