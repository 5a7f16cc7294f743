package usecase

import (
	"context"
	"fmt"
	"sync"

	"logistics-contact-backend/internal/domain"
)

var (
	checkInputNotice = domain.Notification{
		Kind:        domain.NotificationError,
		Title:       "Please check your input",
		Description: "Some fields need your attention.",
	}
	deliveredNotice = domain.Notification{
		Kind:        domain.NotificationSuccess,
		Title:       "Message sent successfully!",
		Description: "We'll get back to you within 24 hours.",
	}
)

// transportNotice tells the user the send failed and where to write instead
func transportNotice(fallbackEmail string) domain.Notification {
	desc := "Please try again later."
	if fallbackEmail != "" {
		desc = fmt.Sprintf("Please try again later or email us directly at %s.", fallbackEmail)
	}
	return domain.Notification{
		Kind:        domain.NotificationError,
		Title:       "Error sending message",
		Description: desc,
	}
}

// ContactForm is one instance of the contact form: its values, field errors and
// the in-flight flag that allows at most one relay call at a time.
type ContactForm struct {
	relay         domain.MailRelay
	templateID    string
	fallbackEmail string

	mu           sync.Mutex
	values       domain.ContactSubmission
	errors       domain.FieldErrors
	phase        domain.FormPhase
	inFlight     bool
	notification *domain.Notification
}

// NewContactForm creates an empty form bound to the given relay
func NewContactForm(relay domain.MailRelay, templateID, fallbackEmail string) *ContactForm {
	return &ContactForm{
		relay:         relay,
		templateID:    templateID,
		fallbackEmail: fallbackEmail,
		errors:        domain.FieldErrors{},
		phase:         domain.PhaseEditing,
	}
}

// OnFieldChange overwrites a field and clears that field's error only.
// The form is locked while a submission is in flight.
func (f *ContactForm) OnFieldChange(field domain.Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return domain.ErrSubmissionInFlight
	}
	if err := f.values.Set(field, value); err != nil {
		return err
	}
	delete(f.errors, field)
	return nil
}

// Validate runs the rule table against a snapshot of the current values
func (f *ContactForm) Validate() domain.FieldErrors {
	f.mu.Lock()
	snapshot := f.values
	f.mu.Unlock()

	return ValidateSubmission(snapshot)
}

// Submit re-validates and, when valid, hands the values to the relay exactly once.
// The result is populated whenever the attempt ran; err is a *domain.ValidationError,
// wraps domain.ErrTransport, or is domain.ErrSubmissionInFlight (nil result).
func (f *ContactForm) Submit(ctx context.Context) (*domain.SubmissionResult, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	}

	f.phase = domain.PhaseValidating
	f.errors = domain.FieldErrors{}
	f.notification = nil
	snapshot := f.values

	if errs := ValidateSubmission(snapshot); len(errs) > 0 {
		f.errors = errs
		f.phase = domain.PhaseEditing
		f.notify(checkInputNotice)
		result := f.resultLocked(domain.OutcomeValidationFailed)
		f.mu.Unlock()
		return result, &domain.ValidationError{Fields: errs.Clone()}
	}

	f.inFlight = true
	f.phase = domain.PhaseSending
	f.mu.Unlock()

	sendErr := f.relay.Send(ctx, f.templateID, templateParams(snapshot))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if sendErr != nil {
		// values were locked during the send, so they still equal the snapshot
		f.phase = domain.PhaseEditing
		f.notify(transportNotice(f.fallbackEmail))
		return f.resultLocked(domain.OutcomeTransportError), fmt.Errorf("%w: %w", domain.ErrTransport, sendErr)
	}

	f.values = domain.ContactSubmission{}
	f.errors = domain.FieldErrors{}
	f.phase = domain.PhaseSent
	f.notify(deliveredNotice)
	result := f.resultLocked(domain.OutcomeDelivered)
	f.phase = domain.PhaseEditing
	return result, nil
}

// State returns a copy of the render projection
func (f *ContactForm) State() domain.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

// IsSubmitting reports whether a relay call is in flight
func (f *ContactForm) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

func (f *ContactForm) notify(n domain.Notification) {
	f.notification = &n
}

func (f *ContactForm) stateLocked() domain.FormState {
	state := domain.FormState{
		Values:       f.values,
		Errors:       f.errors.Clone(),
		IsSubmitting: f.inFlight,
		Phase:        f.phase,
	}
	if f.notification != nil {
		n := *f.notification
		state.Notification = &n
	}
	return state
}

func (f *ContactForm) resultLocked(outcome domain.Outcome) *domain.SubmissionResult {
	state := f.stateLocked()
	result := &domain.SubmissionResult{
		Outcome:      outcome,
		Notification: state.Notification,
		State:        state,
	}
	if len(state.Errors) > 0 {
		result.Errors = state.Errors.Clone()
	}
	return result
}
