package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"vetward/internal/domain"
)

type rateInput struct {
	Number string          `validate:"required"`
	Rate   decimal.Decimal `validate:"positive_amount"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(rateInput{Number: "ICU-01", Rate: decimal.RequireFromString("250.00")}))

	errs := Validate(rateInput{Rate: decimal.Zero})
	assert.Equal(t, "required", errs["Number"])
	assert.Equal(t, "positive_amount", errs["Rate"])

	errs = Validate(rateInput{Number: "G-1", Rate: decimal.RequireFromString("-5")})
	assert.Equal(t, "positive_amount", errs["Rate"])
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(rateInput{Number: "ICU-01", Rate: decimal.NewFromInt(1)}))

	err := Check(rateInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Number required")
	assert.Contains(t, err.Error(), "Rate positive_amount")
}
