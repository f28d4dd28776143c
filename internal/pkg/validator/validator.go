package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"vetward/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// decimal.Decimal is validated through its string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = validate.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string)
	for _, err := range verrs {
		out[err.Field()] = err.Tag()
	}
	return out
}

// Check validates v and reports failures as a domain validation error listing
// each field and the rule it broke.
func Check(v interface{}) error {
	errs := Validate(v)
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f, tag := range errs {
		fields = append(fields, f+" "+tag)
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(fields, ", "))
}
