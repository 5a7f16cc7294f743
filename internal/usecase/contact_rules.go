package usecase

import (
	"errors"
	"strings"

	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// phoneNotProvided is sent to the relay when the optional phone field is blank
const phoneNotProvided = "Not provided"

// fieldRule binds one form field to the validator tag it must satisfy
type fieldRule struct {
	Field domain.Field
	Label string
	Tag   string
}

var contactRules = []fieldRule{
	{Field: domain.FieldFirstName, Label: "First name", Tag: "trimmed_min=2"},
	{Field: domain.FieldLastName, Label: "Last name", Tag: "trimmed_min=2"},
	{Field: domain.FieldEmail, Label: "Email", Tag: "loose_email"},
	{Field: domain.FieldPhone, Label: "Phone number", Tag: "omitempty,phone_digits"},
	{Field: domain.FieldSubject, Label: "Subject", Tag: subjectTag()},
	{Field: domain.FieldMessage, Label: "Message", Tag: "trimmed_min=10"},
}

var rulesValidator = newRulesValidator()

func newRulesValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

// subjectTag renders the oneof tag; labels contain spaces so each is quoted
func subjectTag() string {
	quoted := make([]string, len(domain.Subjects))
	for i, s := range domain.Subjects {
		quoted[i] = "'" + string(s) + "'"
	}
	return "oneof=" + strings.Join(quoted, " ")
}

// ValidateSubmission checks every field against the rule table.
// It has no side effects; an empty result means the submission is valid.
func ValidateSubmission(sub domain.ContactSubmission) domain.FieldErrors {
	errs := domain.FieldErrors{}
	for _, rule := range contactRules {
		err := rulesValidator.Var(sub.Get(rule.Field), rule.Tag)
		if err == nil {
			continue
		}

		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			errs[rule.Field] = validation.RuleMessage(rule.Label, fieldErrs[0].Tag(), fieldErrs[0].Param())
			continue
		}
		errs[rule.Field] = validation.RuleMessage(rule.Label, rule.Tag, "")
	}
	return errs
}

// templateParams maps a valid submission onto the relay template parameters
func templateParams(sub domain.ContactSubmission) domain.TemplateParams {
	phone := strings.TrimSpace(sub.Phone)
	if phone == "" {
		phone = phoneNotProvided
	}
	return domain.TemplateParams{
		"from_name":  strings.TrimSpace(sub.FirstName) + " " + strings.TrimSpace(sub.LastName),
		"from_email": strings.TrimSpace(sub.Email),
		"phone":      phone,
		"subject":    string(sub.Subject),
		"message":    strings.TrimSpace(sub.Message),
	}
}
