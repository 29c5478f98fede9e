package registration

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	regNumberPattern = regexp.MustCompile(`^[0-9]{7}$`)
	phonePattern     = regexp.MustCompile(`^03[0-9]{9}$`)
)

// rawInput is the form exactly as the user typed it.
type rawInput struct {
	RegNumber   string `validate:"required"`
	PhoneNumber string `validate:"required"`
}

// normalizedInput is the form after trimming surrounding whitespace.
type normalizedInput struct {
	RegNumber   string `validate:"regnumber"`
	PhoneNumber string `validate:"phone"`
}

// newValidator returns a validator with the roster's custom tags:
//
//	regnumber: exactly 7 ASCII digits
//	phone: "03" followed by exactly 9 ASCII digits
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("regnumber", func(fl validator.FieldLevel) bool {
		return regNumberPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// normalize checks presence on the raw values, trims them, then checks the
// formats. The first failing field (reg number before phone) decides the
// error.
func normalize(v *validator.Validate, regInput, phoneInput string) (reg, phone string, err error) {
	if err := v.Struct(rawInput{RegNumber: regInput, PhoneNumber: phoneInput}); err != nil {
		return "", "", toValidationError(err)
	}

	in := normalizedInput{
		RegNumber:   strings.TrimSpace(regInput),
		PhoneNumber: strings.TrimSpace(phoneInput),
	}
	if err := v.Struct(in); err != nil {
		return "", "", toValidationError(err)
	}
	return in.RegNumber, in.PhoneNumber, nil
}

// toValidationError maps the first validator.FieldError to our taxonomy.
func toValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Err: ErrMissingField}
	case "regnumber":
		return &ValidationError{Field: fe.Field(), Err: ErrBadRegFormat}
	case "phone":
		return &ValidationError{Field: fe.Field(), Err: ErrBadPhoneFormat}
	default:
		return err
	}
}
