package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	seatCodeRgx    = regexp.MustCompile(`^[A-Z]{1,2}[1-9][0-9]{0,2}$`)
	voucherCodeRgx = regexp.MustCompile(`^[A-Z0-9]{3,32}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_code", validateSeatCode)
	validator.RegisterValidation("voucher_code", validateVoucherCode)

	return validator
}

func validateSeatCode(fl validator.FieldLevel) bool {
	return seatCodeRgx.MatchString(fl.Field().String())
}

func validateVoucherCode(fl validator.FieldLevel) bool {
	return voucherCodeRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s items", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "seat_code":
		return "must be a valid seat code, like A1 or B12"
	case "voucher_code":
		return "must contain only uppercase letters and digits"
	default:
		return "is invalid"
	}
}
