package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator returns a validator that understands decimal.Decimal fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validationMessages maps "<Field>.<tag>" to a human-readable reason.
type validationMessages map[string]string

// toInvalidInput converts validator errors into an InvalidInput ServiceError.
func (m validationMessages) toInvalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewInvalidInputError(err.Error())
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := m[fe.Field()+"."+fe.Tag()]; ok {
			reasons = append(reasons, msg)
			continue
		}
		reasons = append(reasons, "Field '"+fe.Field()+"' failed on the '"+fe.Tag()+"' tag.")
	}
	return NewInvalidInputError(strings.Join(reasons, " "))
}
