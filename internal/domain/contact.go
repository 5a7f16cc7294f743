package domain

import (
	"context"
	"strings"
)

// Field identifies one input of the contact form
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldSubject   Field = "subject"
	FieldMessage   Field = "message"
)

// ContactFields lists every form field in display order
var ContactFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldSubject,
	FieldMessage,
}

// ParseField resolves a field identifier from the fixed contact field set
func ParseField(name string) (Field, error) {
	for _, f := range ContactFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// Subject is the reason selected on the contact form
type Subject string

const (
	SubjectGeneralInquiry      Subject = "General Inquiry"
	SubjectCustomerSupport     Subject = "Customer Support"
	SubjectBusinessPartnership Subject = "Business Partnership"
)

// Subjects lists the selectable subjects
var Subjects = []Subject{
	SubjectGeneralInquiry,
	SubjectCustomerSupport,
	SubjectBusinessPartnership,
}

// ParseSubject maps a submitted label to its canonical Subject.
// Unrecognised input is returned verbatim so validation can reject it.
func ParseSubject(value string) Subject {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "Business Partnerships") {
		return SubjectBusinessPartnership
	}
	for _, s := range Subjects {
		if strings.EqualFold(trimmed, string(s)) {
			return s
		}
	}
	return Subject(value)
}

// Valid reports whether s is one of the selectable subjects
func (s Subject) Valid() bool {
	for _, allowed := range Subjects {
		if s == allowed {
			return true
		}
	}
	return false
}

// ContactSubmission represents the values typed into the contact form
type ContactSubmission struct {
	FirstName string  `json:"firstName" binding:"max=100"`
	LastName  string  `json:"lastName" binding:"max=100"`
	Email     string  `json:"email" binding:"max=254"`
	Phone     string  `json:"phone" binding:"max=32"`
	Subject   Subject `json:"subject" binding:"max=64"`
	Message   string  `json:"message" binding:"max=5000"`
}

// Get returns the raw value of a field
func (s ContactSubmission) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return s.FirstName
	case FieldLastName:
		return s.LastName
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldSubject:
		return string(s.Subject)
	case FieldMessage:
		return s.Message
	}
	return ""
}

// Set overwrites a single field
func (s *ContactSubmission) Set(f Field, value string) error {
	switch f {
	case FieldFirstName:
		s.FirstName = value
	case FieldLastName:
		s.LastName = value
	case FieldEmail:
		s.Email = value
	case FieldPhone:
		s.Phone = value
	case FieldSubject:
		s.Subject = ParseSubject(value)
	case FieldMessage:
		s.Message = value
	default:
		return ErrUnknownField
	}
	return nil
}

// FieldErrors maps a field to its validation message. Empty means valid.
type FieldErrors map[Field]string

// Clone returns an independent copy
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FormPhase is the position of a form in its submission lifecycle
type FormPhase string

const (
	PhaseEditing    FormPhase = "editing"
	PhaseValidating FormPhase = "validating"
	PhaseSending    FormPhase = "sending"
	PhaseSent       FormPhase = "sent"
)

// NotificationKind distinguishes positive from negative user feedback
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the toast shown to the user after a submit attempt
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// FormState is the read-only projection rendered by the page
type FormState struct {
	Values       ContactSubmission `json:"values"`
	Errors       FieldErrors       `json:"errors"`
	IsSubmitting bool              `json:"isSubmitting"`
	Phase        FormPhase         `json:"phase"`
	Notification *Notification     `json:"notification,omitempty"`
}

// Outcome is the result class of a submit attempt
type Outcome string

const (
	OutcomeDelivered        Outcome = "delivered"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeTransportError   Outcome = "transport_error"
)

// SubmissionResult describes what a submit attempt did
type SubmissionResult struct {
	Outcome      Outcome       `json:"outcome"`
	Errors       FieldErrors   `json:"errors,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	State        FormState     `json:"state"`
}

// FormHandle identifies a hosted form instance
type FormHandle struct {
	ID    string    `json:"id"`
	State FormState `json:"state"`
}

// TemplateParams are the named values handed to the mail relay template
type TemplateParams map[string]string

// MailRelay delivers a templated notification email. A nil error means delivered.
type MailRelay interface {
	Send(ctx context.Context, templateID string, params TemplateParams) error
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// OpenForm creates an isolated, empty form instance
	OpenForm(ctx context.Context) (*FormHandle, error)
	FormState(ctx context.Context, formID string) (*FormState, error)
	// ChangeField overwrites one field and clears only that field's error
	ChangeField(ctx context.Context, formID string, field Field, value string) (*FormState, error)
	// ValidateForm runs the rule table against the current values without changing state
	ValidateForm(ctx context.Context, formID string) (FieldErrors, error)
	SubmitForm(ctx context.Context, formID string) (*SubmissionResult, error)
	CloseForm(ctx context.Context, formID string) error
	// SendContactMessage validates and sends a submission in a single step
	SendContactMessage(ctx context.Context, req *ContactSubmission) (*SubmissionResult, error)
	// ContactInfo returns the company's public contact channels
	ContactInfo(ctx context.Context) *SiteInfo
}
