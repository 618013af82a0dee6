package submission

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OtherOption is the dropdown value that asks the user to describe the item in details.
const OtherOption = "Other"

// ItemAttributes is the first wizard step, shared by sell and pawn submissions.
type ItemAttributes struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Category   string          `json:"category" validate:"required,max=64"`
	Purity     string          `json:"purity" validate:"required,max=32"`
	GoldColor  string          `json:"gold_color" validate:"required,max=64"`
	GoldOrigin string          `json:"gold_origin" validate:"required,max=64"`
	Weight     decimal.Decimal `json:"weight" validate:"gt=0"`
	Brand      string          `json:"brand" validate:"max=255"`
	Details    string          `json:"details" validate:"max=5000"`
}

func (a ItemAttributes) hasOther() bool {
	for _, v := range []string{a.Category, a.Purity, a.GoldColor, a.GoldOrigin} {
		if strings.EqualFold(strings.TrimSpace(v), OtherOption) {
			return true
		}
	}
	return false
}

func validateAttributes(sl validator.StructLevel) {
	attrs := sl.Current().Interface().(ItemAttributes)
	if attrs.hasOther() && strings.TrimSpace(attrs.Details) == "" {
		sl.ReportError(attrs.Details, "details", "Details", "required_with_other", "")
	}
}

type Contact struct {
	FullName      string `json:"full_name" validate:"required,max=255"`
	ContactNumber string `json:"contact_number" validate:"required,max=32"`
	Email         string `json:"email" validate:"required,email"`
}

type SellForm struct {
	ItemAttributes
	Contact
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

type PawnForm struct {
	ItemAttributes
	Contact
	Address      string          `json:"address" validate:"required,max=1000"`
	MeetingDates []string        `json:"meeting_dates" validate:"min=1,max=3,dive,datetime=2006-01-02"`
	MeetingPlace string          `json:"meeting_place" validate:"required,max=255"`
	MeetingTime  string          `json:"meeting_time" validate:"required,datetime=15:04"`
	PawnPrice    decimal.Decimal `json:"pawn_price" validate:"gt=0"`
}
