package validator

import (
	"reflect"
	"sync"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate *validator.Validate
	initOnce sync.Once
)

func NewValidator() *validator.Validate {
	initOnce.Do(func() {
		validate = validator.New()
		validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = validate.RegisterValidation("decimal_gt0", decimalPositive)
		_ = validate.RegisterValidation("decimal_gte0", decimalNonNegative)
	})
	return validate
}

func GetValidator() *validator.Validate {
	return NewValidator()
}

// ValidateRequest validates struct tags and marks failures as validation errors
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// decimalValue lets built-in tags such as required see a decimal as a string
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func decimalNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}
