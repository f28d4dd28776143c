package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckCents(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"150", true},
		{"10.1", true},
		{"10.10", true},
		{"10.100", true},
		{"0.004", false},
		{"149.995", false},
		{"-0.001", false},
	}
	for _, tt := range tests {
		err := CheckCents("amount", decimal.RequireFromString(tt.amount))
		if tt.ok {
			assert.NoError(t, err, tt.amount)
		} else {
			assert.ErrorIs(t, err, ErrValidation, tt.amount)
		}
	}
}
