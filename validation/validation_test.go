package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string          `json:"name" validate:"required"`
	Email  string          `json:"email" validate:"omitempty,email"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Tags   []string        `json:"tags" validate:"max=2"`
}

func TestCheck(t *testing.T) {
	v := New()

	testCases := []struct {
		name    string
		input   sample
		wantMsg string
	}{
		{
			name:  "valid",
			input: sample{Name: "a", Amount: decimal.NewFromInt(1)},
		},
		{
			name:    "missing name uses json name",
			input:   sample{Amount: decimal.NewFromInt(1)},
			wantMsg: "name is required",
		},
		{
			name:    "zero decimal",
			input:   sample{Name: "a"},
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "negative decimal",
			input:   sample{Name: "a", Amount: decimal.NewFromFloat(-0.5)},
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "multiple errors",
			input:   sample{Email: "nope", Amount: decimal.NewFromInt(3), Tags: []string{"1", "2", "3"}},
			wantMsg: "name is required; email must be a valid email address; tags must contain at most 2 entries",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(v, tc.input)
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Equal(t, "invalid input: "+tc.wantMsg, err.Error())
		})
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("at most %d images", 3)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "invalid input: at most 3 images", err.Error())
}
