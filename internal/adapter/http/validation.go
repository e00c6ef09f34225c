package http

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/eligibility"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error    string               `json:"error"`
	Details  []FieldError         `json:"details,omitempty"`
	Reasons  []eligibility.Reason `json:"reasons,omitempty"`
	Warnings []eligibility.Reason `json:"warnings,omitempty"`
}

var (
	reHex32   = regexp.MustCompile(`^[a-f0-9]{32}$`)
	rePAN     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	reIFSC    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	reAccount = regexp.MustCompile(`^[0-9]{9,18}$`)
	// fits decimal(18,2)
	reMoney = regexp.MustCompile(`^[0-9]{1,16}(\.[0-9]{1,2})?$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// money travels as a plain decimal string: positive, at most 2 decimal places
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !reMoney.MatchString(s) {
			return false
		}
		d, err := decimal.NewFromString(s)
		return err == nil && d.IsPositive()
	})
	// same, but zero allowed
	_ = v.RegisterValidation("money0", func(fl validator.FieldLevel) bool {
		return reMoney.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return rePAN.MatchString(strings.ToUpper(fl.Field().String()))
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return reIFSC.MatchString(strings.ToUpper(fl.Field().String()))
	})
	_ = v.RegisterValidation("acctno", func(fl validator.FieldLevel) bool {
		return reAccount.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "money":
			out = append(out, FieldError{Field: field, Message: "must be a positive plain decimal string with at most 2 decimal places"})
		case "money0":
			out = append(out, FieldError{Field: field, Message: "must be a non-negative plain decimal string with at most 2 decimal places"})
		case "pan":
			out = append(out, FieldError{Field: field, Message: "must be a 10-character PAN (AAAAA9999A)"})
		case "ifsc":
			out = append(out, FieldError{Field: field, Message: "must be an 11-character IFSC (AAAA0XXXXXX)"})
		case "acctno":
			out = append(out, FieldError{Field: field, Message: "must be 9 to 18 digits"})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be a date in " + e.Param() + " format"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of: " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
