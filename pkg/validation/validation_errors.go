package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"FirstName": "First name",
	"LastName":  "Last name",
	"Email":     "Email",
	"Phone":     "Phone number",
	"Subject":   "Subject",
	"Message":   "Message",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, RuleMessage(getFieldLabel(e.Field()), e.Tag(), e.Param()))
	}

	return messages
}

// RuleMessage renders the message shown when label fails the validator tag
func RuleMessage(label, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", label)

	case "min", "trimmed_min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)

	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, param)

	case "email", "loose_email":
		return "Please enter a valid email address"

	case "phone_digits":
		return fmt.Sprintf("%s must be 11 or 12 digits", label)

	case "oneof":
		return fmt.Sprintf("Please select a %s", strings.ToLower(label))

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s is invalid (%s)", label, tag)
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// Return field name with spaces between camelCase words
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
