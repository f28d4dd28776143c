package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CheckCents rejects amounts with more precision than whole cents, which is
// all that SQL rows keep.
func CheckCents(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return fmt.Errorf("%w: %s %s has more than 2 decimal places", ErrValidation, field, v.String())
	}
	return nil
}
