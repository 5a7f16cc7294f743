package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"logistics-contact-backend/config"
	v1 "logistics-contact-backend/internal/delivery/http/v1"
	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRelay records every send and fails while err is set
type stubRelay struct {
	mu    sync.Mutex
	sent  []domain.TemplateParams
	err   error
	ready bool
}

func (s *stubRelay) Send(ctx context.Context, templateID string, params domain.TemplateParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return s.err
}

func (s *stubRelay) IsConfigured() bool { return s.ready }

func (s *stubRelay) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newTestRouter(relay *stubRelay) http.Handler {
	site := &domain.SiteInfo{Company: "WWS Logistics", Emails: []string{"info@wws-logistics.com"}}
	uc := usecase.NewContactUsecase(relay, site, usecase.ContactOptions{TemplateID: "template_contact"})
	return v1.NewRouter(v1.RouterDeps{
		ContactUC: uc,
		HealthUC:  usecase.NewHealthUsecase(relay, nil),
		Config: &config.Config{
			FrontendURL:               "http://localhost:5173",
			RateLimitWindowSeconds:    60,
			RateLimitContactThreshold: 1000,
			RateLimitGlobalThreshold:  1000,
		},
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func validBody() map[string]string {
	return map[string]string{
		"firstName": "Al",
		"lastName":  "Lee",
		"email":     "a@b.com",
		"phone":     "",
		"subject":   "General Inquiry",
		"message":   "Hello there, need a quote",
	}
}

func TestSubmitContact(t *testing.T) {
	t.Run("Should deliver a valid submission", func(t *testing.T) {
		relay := &stubRelay{}
		w, env := do(t, newTestRouter(relay), http.MethodPost, "/v1/contact", validBody())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "Message sent successfully!", env.Message)
		require.Equal(t, 1, relay.calls())
		assert.Equal(t, "Not provided", relay.sent[0]["phone"])

		var result domain.SubmissionResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, domain.OutcomeDelivered, result.Outcome)
		assert.Equal(t, domain.ContactSubmission{}, result.State.Values)
	})

	t.Run("Should return field errors without sending", func(t *testing.T) {
		relay := &stubRelay{}
		body := validBody()
		body["firstName"] = "A"
		w, env := do(t, newTestRouter(relay), http.MethodPost, "/v1/contact", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Please check your input", env.Message)
		assert.Zero(t, relay.calls())

		var result domain.SubmissionResult
		require.NoError(t, json.Unmarshal(env.Error, &result))
		assert.Equal(t, domain.FieldErrors{domain.FieldFirstName: "First name must be at least 2 characters"}, result.Errors)
	})

	t.Run("Should report relay failures with the fallback address", func(t *testing.T) {
		relay := &stubRelay{err: errors.New("relay 503")}
		w, env := do(t, newTestRouter(relay), http.MethodPost, "/v1/contact", validBody())

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Error sending message", env.Message)
		assert.Contains(t, string(env.Error), "info@wws-logistics.com")
		assert.NotContains(t, string(env.Error), "relay 503", "relay details stay server-side")

		var result domain.SubmissionResult
		require.NoError(t, json.Unmarshal(env.Error, &result))
		assert.Equal(t, "Al", result.State.Values.FirstName)
	})

	t.Run("Should reject oversized fields at binding", func(t *testing.T) {
		relay := &stubRelay{}
		body := validBody()
		body["firstName"] = strings.Repeat("x", 101)
		w, env := do(t, newTestRouter(relay), http.MethodPost, "/v1/contact", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, string(env.Error), "First name must be at most 100 characters")
		assert.Zero(t, relay.calls())
	})
}

func TestContactFormLifecycle(t *testing.T) {
	relay := &stubRelay{err: errors.New("timeout")}
	router := newTestRouter(relay)

	w, env := do(t, router, http.MethodPost, "/v1/contact/forms", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var handle domain.FormHandle
	require.NoError(t, json.Unmarshal(env.Data, &handle))
	base := "/v1/contact/forms/" + handle.ID

	// submitting an empty form attaches every required-field error
	w, _ = do(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env = do(t, router, http.MethodPut, base+"/fields/firstName", map[string]string{"value": "Al"})
	require.Equal(t, http.StatusOK, w.Code)
	var state domain.FormState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.NotContains(t, state.Errors, domain.FieldFirstName)
	assert.Contains(t, state.Errors, domain.FieldLastName, "other errors are untouched")

	for field, value := range validBody() {
		w, _ = do(t, router, http.MethodPut, base+"/fields/"+field, map[string]string{"value": value})
		require.Equal(t, http.StatusOK, w.Code, field)
	}

	w, env = do(t, router, http.MethodPost, base+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"errors":{}}`, string(env.Data))

	w, _ = do(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, env = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "Hello there, need a quote", state.Values.Message, "input survives a failed send")
	assert.False(t, state.IsSubmitting)

	relay.mu.Lock()
	relay.err = nil
	relay.mu.Unlock()

	w, _ = do(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, relay.calls())

	w, _ = do(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeFieldErrors(t *testing.T) {
	router := newTestRouter(&stubRelay{})

	w, env := do(t, router, http.MethodPost, "/v1/contact/forms", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var handle domain.FormHandle
	require.NoError(t, json.Unmarshal(env.Data, &handle))

	w, _ = do(t, router, http.MethodPut, "/v1/contact/forms/"+handle.ID+"/fields/company", map[string]string{"value": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodPut, "/v1/contact/forms/unknown/fields/email", map[string]string{"value": "a@b.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactInfoAndHealth(t *testing.T) {
	router := newTestRouter(&stubRelay{ready: true})

	w, env := do(t, router, http.MethodGet, "/v1/contact/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info domain.SiteInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "WWS Logistics", info.Company)

	w, env = do(t, router, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","mail":"configured","redis":"disabled"}`, string(env.Data))
}
