package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/pkg/logger"

	"github.com/google/uuid"
)

// ContactOptions configures the contact usecase
type ContactOptions struct {
	TemplateID    string
	FallbackEmail string        // Defaults to the site's primary email
	FormTTL       time.Duration // Idle forms older than this are discarded
}

type hostedForm struct {
	form     *ContactForm
	lastSeen time.Time
}

type contactUsecase struct {
	relay         domain.MailRelay
	site          *domain.SiteInfo
	templateID    string
	fallbackEmail string
	formTTL       time.Duration
	now           func() time.Time

	mu    sync.Mutex
	forms map[string]*hostedForm
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(relay domain.MailRelay, site *domain.SiteInfo, opts ContactOptions) domain.ContactUsecase {
	return newContactUsecase(relay, site, opts, time.Now)
}

func newContactUsecase(relay domain.MailRelay, site *domain.SiteInfo, opts ContactOptions, now func() time.Time) *contactUsecase {
	fallback := opts.FallbackEmail
	if fallback == "" {
		fallback = site.PrimaryEmail()
	}
	ttl := opts.FormTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &contactUsecase{
		relay:         relay,
		site:          site,
		templateID:    opts.TemplateID,
		fallbackEmail: fallback,
		formTTL:       ttl,
		now:           now,
		forms:         make(map[string]*hostedForm),
	}
}

// OpenForm creates an empty form and sweeps forms that went idle
func (uc *contactUsecase) OpenForm(ctx context.Context) (*domain.FormHandle, error) {
	form := NewContactForm(uc.relay, uc.templateID, uc.fallbackEmail)
	id := uuid.NewString()

	uc.mu.Lock()
	uc.sweepLocked()
	uc.forms[id] = &hostedForm{form: form, lastSeen: uc.now()}
	uc.mu.Unlock()

	return &domain.FormHandle{ID: id, State: form.State()}, nil
}

func (uc *contactUsecase) FormState(ctx context.Context, formID string) (*domain.FormState, error) {
	form, err := uc.lookup(formID)
	if err != nil {
		return nil, err
	}
	state := form.State()
	return &state, nil
}

func (uc *contactUsecase) ChangeField(ctx context.Context, formID string, field domain.Field, value string) (*domain.FormState, error) {
	form, err := uc.lookup(formID)
	if err != nil {
		return nil, err
	}
	if err := form.OnFieldChange(field, value); err != nil {
		return nil, err
	}
	state := form.State()
	return &state, nil
}

func (uc *contactUsecase) ValidateForm(ctx context.Context, formID string) (domain.FieldErrors, error) {
	form, err := uc.lookup(formID)
	if err != nil {
		return nil, err
	}
	return form.Validate(), nil
}

func (uc *contactUsecase) SubmitForm(ctx context.Context, formID string) (*domain.SubmissionResult, error) {
	form, err := uc.lookup(formID)
	if err != nil {
		return nil, err
	}
	result, err := form.Submit(ctx)
	logSubmission(formID, result, err)
	return result, err
}

func (uc *contactUsecase) CloseForm(ctx context.Context, formID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.forms[formID]; !ok {
		return domain.ErrFormNotFound
	}
	delete(uc.forms, formID)
	return nil
}

// SendContactMessage fills a throwaway form in field order and submits it
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactSubmission) (*domain.SubmissionResult, error) {
	form := NewContactForm(uc.relay, uc.templateID, uc.fallbackEmail)
	for _, field := range domain.ContactFields {
		if err := form.OnFieldChange(field, req.Get(field)); err != nil {
			return nil, err
		}
	}

	result, err := form.Submit(ctx)
	logSubmission("", result, err)
	return result, err
}

func (uc *contactUsecase) ContactInfo(ctx context.Context) *domain.SiteInfo {
	return uc.site
}

// lookup returns a live form and refreshes its idle timer
func (uc *contactUsecase) lookup(formID string) (*ContactForm, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	hosted, ok := uc.forms[formID]
	if !ok {
		return nil, domain.ErrFormNotFound
	}
	now := uc.now()
	if uc.expired(hosted, now) {
		delete(uc.forms, formID)
		return nil, domain.ErrFormNotFound
	}
	hosted.lastSeen = now
	return hosted.form, nil
}

func (uc *contactUsecase) sweepLocked() {
	now := uc.now()
	for id, hosted := range uc.forms {
		if uc.expired(hosted, now) {
			delete(uc.forms, id)
		}
	}
}

// expired never reports a form whose send is still in flight
func (uc *contactUsecase) expired(hosted *hostedForm, now time.Time) bool {
	return now.Sub(hosted.lastSeen) > uc.formTTL && !hosted.form.IsSubmitting()
}

func logSubmission(formID string, result *domain.SubmissionResult, err error) {
	switch {
	case err == nil:
		logger.Log.Info("Contact message delivered", "form_id", formID, "outcome", result.Outcome)
	case errors.Is(err, domain.ErrTransport):
		logger.Log.Error("Contact message not delivered", "form_id", formID, "outcome", result.Outcome, "error", err)
	case errors.Is(err, domain.ErrValidationFailed):
		logger.Log.Debug("Contact message rejected", "form_id", formID, "outcome", result.Outcome)
	default:
		logger.Log.Warn("Contact submission refused", "form_id", formID, "error", err)
	}
}
