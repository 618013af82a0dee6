package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PawnTransaction is the loan record written when an admin completes a pawn.
// The row outlives its item: ItemID is nulled on item deletion and ItemTitle keeps the snapshot.
type PawnTransaction struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;<-:false"`
	TransactionNo    string          `json:"transaction_no" gorm:"type:varchar(32);not null;uniqueIndex;<-:create"`
	ItemID           *uuid.UUID      `json:"item_id" gorm:"type:uuid;index"`
	ItemTitle        string          `json:"item_title" gorm:"type:varchar(255);not null;<-:create"`
	CustomerName     string          `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerIDType   string          `json:"customer_id_type" gorm:"type:varchar(64);not null"`
	CustomerIDNumber string          `json:"customer_id_number" gorm:"type:varchar(64);not null"`
	ContactNumber    string          `json:"contact_number" gorm:"type:varchar(32);not null"`
	AppraisedValue   decimal.Decimal `json:"appraised_value" gorm:"type:numeric(14,2);not null"`
	LoanAmount       decimal.Decimal `json:"loan_amount" gorm:"type:numeric(14,2);not null"`
	InterestRate     decimal.Decimal `json:"interest_rate" gorm:"type:numeric(5,2);not null"`
	MaturityDate     time.Time       `json:"maturity_date" gorm:"type:date;not null"`
	DueDate          time.Time       `json:"due_date" gorm:"type:date;not null"`
	Status           ItemStatus      `json:"status" gorm:"type:varchar(16);not null"`
	CreatedBy        uuid.UUID       `json:"created_by" gorm:"type:uuid;not null;<-:create"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`

	Item *Item `json:"-" gorm:"foreignKey:ItemID;constraint:OnDelete:SET NULL"`
}
