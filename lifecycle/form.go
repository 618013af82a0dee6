package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"goldpawn/models"
	"goldpawn/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// TransactionForm is what an admin fills in when a pawned item changes hands.
type TransactionForm struct {
	CustomerName     string          `json:"customer_name" validate:"required,max=255"`
	CustomerIDType   string          `json:"customer_id_type" validate:"required,max=64"`
	CustomerIDNumber string          `json:"customer_id_number" validate:"required,max=64"`
	ContactNumber    string          `json:"contact_number" validate:"required,max=32"`
	AppraisedValue   decimal.Decimal `json:"appraised_value" validate:"gt=0"`
	LoanAmount       decimal.Decimal `json:"loan_amount" validate:"gt=0"`
	InterestRate     decimal.Decimal `json:"interest_rate" validate:"gt=0"`
	MaturityDate     string          `json:"maturity_date" validate:"required,datetime=2006-01-02"`
	DueDate          string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (f TransactionForm) check(v *validator.Validate) (maturity, due time.Time, err error) {
	if err = validation.Check(v, f); err != nil {
		return
	}
	// Both dates already passed the datetime rule.
	maturity, _ = time.Parse(DateLayout, f.MaturityDate)
	due, _ = time.Parse(DateLayout, f.DueDate)
	if due.After(maturity) {
		err = validation.Invalid("due_date must not be after maturity_date")
	}
	return
}

func (f TransactionForm) toTransaction(item *models.Item, actor Actor, maturity, due, now time.Time) *models.PawnTransaction {
	return &models.PawnTransaction{
		TransactionNo:    NewTransactionNo(now),
		ItemID:           &item.ID,
		ItemTitle:        item.Title,
		CustomerName:     strings.TrimSpace(f.CustomerName),
		CustomerIDType:   strings.TrimSpace(f.CustomerIDType),
		CustomerIDNumber: strings.TrimSpace(f.CustomerIDNumber),
		ContactNumber:    strings.TrimSpace(f.ContactNumber),
		AppraisedValue:   f.AppraisedValue,
		LoanAmount:       f.LoanAmount,
		InterestRate:     f.InterestRate,
		MaturityDate:     maturity,
		DueDate:          due,
		Status:           models.StatusPawned,
		CreatedBy:        actor.UserID,
	}
}

// NewTransactionNo returns a number like PT-20261015-1A2B3C4D.
func NewTransactionNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PT-%s-%s", now.Format("20060102"), suffix)
}
