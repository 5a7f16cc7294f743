package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Same loose shape the contact page checks in the browser: something@something.something
	looseEmailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

	// Local and international numbers typed without separators
	phoneDigitsRegex = regexp.MustCompile(`^[0-9]{11,12}$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("trimmed_min", TrimmedMin)
	_ = v.RegisterValidation("loose_email", LooseEmail)
	_ = v.RegisterValidation("phone_digits", PhoneDigits)
}

// TrimmedMin validates the character count of a string after surrounding whitespace is removed
func TrimmedMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
}

// LooseEmail validates the local@domain.tld shape without RFC 5322 strictness
func LooseEmail(fl validator.FieldLevel) bool {
	return looseEmailRegex.MatchString(fl.Field().String())
}

// PhoneDigits validates an 11 or 12 digit phone number
func PhoneDigits(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return phoneDigitsRegex.MatchString(val)
}
