package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellRequest holds the seller's contact details; one row per sell item.
type SellRequest struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	ItemID        uuid.UUID `json:"item_id" gorm:"type:uuid;not null;uniqueIndex;<-:create"`
	FullName      string    `json:"full_name" gorm:"type:varchar(255);not null"`
	ContactNumber string    `json:"contact_number" gorm:"type:varchar(32);not null"`
	Email         string    `json:"email" gorm:"type:varchar(255);not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PawnRequest holds the pawner's contact details and the proposed appraisal meeting.
type PawnRequest struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	ItemID        uuid.UUID       `json:"item_id" gorm:"type:uuid;not null;uniqueIndex;<-:create"`
	FullName      string          `json:"full_name" gorm:"type:varchar(255);not null"`
	ContactNumber string          `json:"contact_number" gorm:"type:varchar(32);not null"`
	Email         string          `json:"email" gorm:"type:varchar(255);not null"`
	Address       string          `json:"address" gorm:"type:text;not null"`
	MeetingDate1  *time.Time      `json:"meeting_date_1" gorm:"column:meeting_date_1;type:date"`
	MeetingDate2  *time.Time      `json:"meeting_date_2,omitempty" gorm:"column:meeting_date_2;type:date"`
	MeetingDate3  *time.Time      `json:"meeting_date_3,omitempty" gorm:"column:meeting_date_3;type:date"`
	MeetingPlace  string          `json:"meeting_place" gorm:"type:varchar(255);not null"`
	MeetingTime   string          `json:"meeting_time" gorm:"type:varchar(8);not null"`
	PawnPrice     decimal.Decimal `json:"pawn_price" gorm:"type:numeric(14,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MeetingDates returns the non-empty candidate dates in order.
func (r *PawnRequest) MeetingDates() []time.Time {
	dates := make([]time.Time, 0, 3)
	for _, d := range []*time.Time{r.MeetingDate1, r.MeetingDate2, r.MeetingDate3} {
		if d != nil {
			dates = append(dates, *d)
		}
	}
	return dates
}
