package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTemplateID = "template_contact"

// Mock Relay
type MockMailRelay struct {
	mock.Mock
}

func (m *MockMailRelay) Send(ctx context.Context, templateID string, params domain.TemplateParams) error {
	return m.Called(ctx, templateID, params).Error(0)
}

// blockingRelay holds every Send until release is closed
type blockingRelay struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	once    sync.Once
}

func newBlockingRelay() *blockingRelay {
	return &blockingRelay{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingRelay) Send(ctx context.Context, templateID string, params domain.TemplateParams) error {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	<-r.release
	return nil
}

func validSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		FirstName: "Al",
		LastName:  "Lee",
		Email:     "a@b.com",
		Phone:     "",
		Subject:   domain.SubjectGeneralInquiry,
		Message:   "Hello there, need a quote",
	}
}

func fill(t *testing.T, form *usecase.ContactForm, sub domain.ContactSubmission) {
	t.Helper()
	for _, f := range domain.ContactFields {
		require.NoError(t, form.OnFieldChange(f, sub.Get(f)))
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.ContactSubmission)
		want   domain.FieldErrors
	}{
		{
			name:   "valid submission",
			mutate: func(s *domain.ContactSubmission) {},
			want:   domain.FieldErrors{},
		},
		{
			name:   "short first name",
			mutate: func(s *domain.ContactSubmission) { s.FirstName = "A" },
			want:   domain.FieldErrors{domain.FieldFirstName: "First name must be at least 2 characters"},
		},
		{
			name:   "whitespace padded last name",
			mutate: func(s *domain.ContactSubmission) { s.LastName = "  L  " },
			want:   domain.FieldErrors{domain.FieldLastName: "Last name must be at least 2 characters"},
		},
		{
			name:   "bad email",
			mutate: func(s *domain.ContactSubmission) { s.Email = "a@b" },
			want:   domain.FieldErrors{domain.FieldEmail: "Please enter a valid email address"},
		},
		{
			name:   "short phone",
			mutate: func(s *domain.ContactSubmission) { s.Phone = "12345" },
			want:   domain.FieldErrors{domain.FieldPhone: "Phone number must be 11 or 12 digits"},
		},
		{
			name:   "valid twelve digit phone",
			mutate: func(s *domain.ContactSubmission) { s.Phone = "923168622164" },
			want:   domain.FieldErrors{},
		},
		{
			name:   "unset subject",
			mutate: func(s *domain.ContactSubmission) { s.Subject = "" },
			want:   domain.FieldErrors{domain.FieldSubject: "Please select a subject"},
		},
		{
			name:   "unknown subject",
			mutate: func(s *domain.ContactSubmission) { s.Subject = "Careers" },
			want:   domain.FieldErrors{domain.FieldSubject: "Please select a subject"},
		},
		{
			name:   "short message",
			mutate: func(s *domain.ContactSubmission) { s.Message = "  too short " },
			want:   domain.FieldErrors{domain.FieldMessage: "Message must be at least 10 characters"},
		},
		{
			name: "everything wrong",
			mutate: func(s *domain.ContactSubmission) {
				*s = domain.ContactSubmission{Phone: "phone"}
			},
			want: domain.FieldErrors{
				domain.FieldFirstName: "First name must be at least 2 characters",
				domain.FieldLastName:  "Last name must be at least 2 characters",
				domain.FieldEmail:     "Please enter a valid email address",
				domain.FieldPhone:     "Phone number must be 11 or 12 digits",
				domain.FieldSubject:   "Please select a subject",
				domain.FieldMessage:   "Message must be at least 10 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			assert.Equal(t, tt.want, usecase.ValidateSubmission(sub))
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	sub := validSubmission()
	sub.Email = "nope"
	sub.Phone = "1"

	first := usecase.ValidateSubmission(sub)
	second := usecase.ValidateSubmission(sub)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestValidateIgnoresFillOrder(t *testing.T) {
	sub := validSubmission()
	sub.FirstName = "A"
	sub.Message = "short"

	forward := usecase.NewContactForm(new(MockMailRelay), testTemplateID, "")
	fill(t, forward, sub)

	backward := usecase.NewContactForm(new(MockMailRelay), testTemplateID, "")
	for i := len(domain.ContactFields) - 1; i >= 0; i-- {
		f := domain.ContactFields[i]
		require.NoError(t, backward.OnFieldChange(f, sub.Get(f)))
	}

	assert.Equal(t, forward.Validate(), backward.Validate())
	assert.Equal(t, domain.FieldErrors{
		domain.FieldFirstName: "First name must be at least 2 characters",
		domain.FieldMessage:   "Message must be at least 10 characters",
	}, forward.Validate())
}

func TestOnFieldChange(t *testing.T) {
	t.Run("Should clear only the edited field's error", func(t *testing.T) {
		relay := new(MockMailRelay)
		form := usecase.NewContactForm(relay, testTemplateID, "")

		_, err := form.Submit(context.Background())
		require.ErrorIs(t, err, domain.ErrValidationFailed)
		before := form.State().Errors
		require.Len(t, before, 5, "phone is optional")

		require.NoError(t, form.OnFieldChange(domain.FieldEmail, "x"))

		after := form.State().Errors
		assert.NotContains(t, after, domain.FieldEmail)
		delete(before, domain.FieldEmail)
		assert.Equal(t, before, after)
		relay.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject unknown fields", func(t *testing.T) {
		form := usecase.NewContactForm(new(MockMailRelay), testTemplateID, "")
		assert.ErrorIs(t, form.OnFieldChange("company", "Acme"), domain.ErrUnknownField)
	})

	t.Run("Should normalise subject labels", func(t *testing.T) {
		form := usecase.NewContactForm(new(MockMailRelay), testTemplateID, "")
		require.NoError(t, form.OnFieldChange(domain.FieldSubject, "Business Partnerships"))
		assert.Equal(t, domain.SubjectBusinessPartnership, form.State().Values.Subject)
	})
}

func TestSubmitDelivered(t *testing.T) {
	relay := new(MockMailRelay)
	form := usecase.NewContactForm(relay, testTemplateID, "info@wws-logistics.com")
	fill(t, form, validSubmission())

	relay.On("Send", mock.Anything, testTemplateID, domain.TemplateParams{
		"from_name":  "Al Lee",
		"from_email": "a@b.com",
		"phone":      "Not provided",
		"subject":    "General Inquiry",
		"message":    "Hello there, need a quote",
	}).Return(nil).Once()

	result, err := form.Submit(context.Background())
	require.NoError(t, err)
	relay.AssertExpectations(t)

	assert.Equal(t, domain.OutcomeDelivered, result.Outcome)
	assert.Equal(t, domain.PhaseSent, result.State.Phase)
	require.NotNil(t, result.Notification)
	assert.Equal(t, domain.NotificationSuccess, result.Notification.Kind)

	state := form.State()
	assert.Equal(t, domain.ContactSubmission{}, state.Values)
	assert.Empty(t, state.Errors)
	assert.False(t, state.IsSubmitting)
	assert.Equal(t, domain.PhaseEditing, state.Phase)
}

func TestSubmitTransportError(t *testing.T) {
	relay := new(MockMailRelay)
	form := usecase.NewContactForm(relay, testTemplateID, "info@wws-logistics.com")

	sub := validSubmission()
	sub.Phone = "03168622164"
	sub.Message = "  Need a quote for 3 containers  "
	fill(t, form, sub)
	before := form.State().Values

	relayErr := errors.New("relay returned 503")
	relay.On("Send", mock.Anything, testTemplateID, mock.AnythingOfType("domain.TemplateParams")).Return(relayErr).Once()

	result, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, relayErr)
	assert.NotErrorIs(t, err, domain.ErrValidationFailed)

	assert.Equal(t, domain.OutcomeTransportError, result.Outcome)
	assert.Contains(t, result.Notification.Description, "info@wws-logistics.com")

	state := form.State()
	assert.Equal(t, before, state.Values, "values must survive a failed send untouched")
	assert.False(t, state.IsSubmitting)
	assert.Empty(t, state.Errors)

	t.Run("Should allow a manual retry", func(t *testing.T) {
		relay.On("Send", mock.Anything, testTemplateID, mock.AnythingOfType("domain.TemplateParams")).Return(nil).Once()

		result, err := form.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDelivered, result.Outcome)
		relay.AssertNumberOfCalls(t, "Send", 2)
	})
}

func TestSubmitValidationFailed(t *testing.T) {
	relay := new(MockMailRelay)
	form := usecase.NewContactForm(relay, testTemplateID, "")

	sub := validSubmission()
	sub.Subject = ""
	fill(t, form, sub)

	result, err := form.Submit(context.Background())

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FieldErrors{domain.FieldSubject: "Please select a subject"}, vErr.Fields)
	assert.NotErrorIs(t, err, domain.ErrTransport)

	assert.Equal(t, domain.OutcomeValidationFailed, result.Outcome)
	assert.Equal(t, "Please check your input", result.Notification.Title)
	assert.Equal(t, sub, form.State().Values, "rejected submissions stay editable")
	relay.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	relay := newBlockingRelay()
	form := usecase.NewContactForm(relay, testTemplateID, "")
	fill(t, form, validSubmission())

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	select {
	case <-relay.started:
	case <-time.After(2 * time.Second):
		t.Fatal("relay was never called")
	}

	assert.True(t, form.State().IsSubmitting)

	result, err := form.Submit(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	assert.ErrorIs(t, form.OnFieldChange(domain.FieldMessage, "changed while sending"), domain.ErrSubmissionInFlight)

	close(relay.release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), relay.calls.Load())
	assert.False(t, form.State().IsSubmitting)
}

func TestContactUsecaseForms(t *testing.T) {
	ctx := context.Background()
	relay := new(MockMailRelay)
	site := &domain.SiteInfo{Emails: []string{"info@wws-logistics.com"}}
	uc := usecase.NewContactUsecase(relay, site, usecase.ContactOptions{TemplateID: testTemplateID})

	handle, err := uc.OpenForm(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID)
	assert.Equal(t, domain.PhaseEditing, handle.State.Phase)

	other, err := uc.OpenForm(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, handle.ID, other.ID)

	state, err := uc.ChangeField(ctx, handle.ID, domain.FieldFirstName, "Al")
	require.NoError(t, err)
	assert.Equal(t, "Al", state.Values.FirstName)

	otherState, err := uc.FormState(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherState.Values.FirstName, "forms are isolated")

	errs, err := uc.ValidateForm(ctx, handle.ID)
	require.NoError(t, err)
	assert.NotContains(t, errs, domain.FieldFirstName)
	assert.Contains(t, errs, domain.FieldLastName)

	relay.On("Send", mock.Anything, testTemplateID, mock.Anything).Return(errors.New("timeout")).Once()
	for _, f := range []domain.Field{domain.FieldLastName, domain.FieldEmail, domain.FieldSubject, domain.FieldMessage} {
		_, err := uc.ChangeField(ctx, handle.ID, f, validSubmission().Get(f))
		require.NoError(t, err)
	}
	result, err := uc.SubmitForm(ctx, handle.ID)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, result.Notification.Description, "info@wws-logistics.com", "fallback defaults to the site email")

	require.NoError(t, uc.CloseForm(ctx, handle.ID))
	_, err = uc.FormState(ctx, handle.ID)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
	assert.ErrorIs(t, uc.CloseForm(ctx, handle.ID), domain.ErrFormNotFound)

	_, err = uc.SubmitForm(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
}

func TestSendContactMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should deliver a valid one-shot submission", func(t *testing.T) {
		relay := new(MockMailRelay)
		uc := usecase.NewContactUsecase(relay, &domain.SiteInfo{}, usecase.ContactOptions{TemplateID: testTemplateID})

		relay.On("Send", mock.Anything, testTemplateID, mock.MatchedBy(func(p domain.TemplateParams) bool {
			return p["from_name"] == "Al Lee" && p["subject"] == "Business Partnership"
		})).Return(nil).Once()

		sub := validSubmission()
		sub.Subject = "business partnerships"
		result, err := uc.SendContactMessage(ctx, &sub)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDelivered, result.Outcome)
		relay.AssertExpectations(t)
	})

	t.Run("Should never reach the relay with invalid input", func(t *testing.T) {
		relay := new(MockMailRelay)
		uc := usecase.NewContactUsecase(relay, &domain.SiteInfo{}, usecase.ContactOptions{TemplateID: testTemplateID})

		sub := validSubmission()
		sub.Phone = "12345"
		result, err := uc.SendContactMessage(ctx, &sub)
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		assert.Equal(t, domain.FieldErrors{domain.FieldPhone: "Phone number must be 11 or 12 digits"}, result.Errors)
		relay.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestContactInfo(t *testing.T) {
	site := &domain.SiteInfo{Company: "WWS Logistics"}
	uc := usecase.NewContactUsecase(new(MockMailRelay), site, usecase.ContactOptions{})
	assert.Same(t, site, uc.ContactInfo(context.Background()))
}

type stubTransport bool

func (s stubTransport) IsConfigured() bool { return bool(s) }

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	ok := usecase.NewHealthUsecase(stubTransport(true), nil).Check(ctx)
	assert.Equal(t, map[string]string{"status": "ok", "mail": "configured", "redis": "disabled"}, ok)

	degraded := usecase.NewHealthUsecase(stubTransport(false), func(context.Context) error {
		return errors.New("connection refused")
	}).Check(ctx)
	assert.Equal(t, "degraded", degraded["status"])
	assert.Equal(t, "unconfigured", degraded["mail"])
	assert.Equal(t, "down", degraded["redis"])

	up := usecase.NewHealthUsecase(stubTransport(true), func(context.Context) error { return nil }).Check(ctx)
	assert.Equal(t, "up", up["redis"])
	assert.Equal(t, "ok", up["status"])
}
