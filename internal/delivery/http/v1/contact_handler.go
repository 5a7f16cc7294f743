package v1

import (
	"errors"
	"net/http"

	"logistics-contact-backend/internal/delivery/http/response"
	"logistics-contact-backend/internal/domain"
	"logistics-contact-backend/pkg/apperror"
	"logistics-contact-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// FieldChangeRequest carries the new value of a single form field
type FieldChangeRequest struct {
	Value string `json:"value" binding:"max=5000"`
}

// NewContactHandler registers the contact routes (public, no auth required).
// submitLimit guards the routes that trigger an outbound email.
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, submitLimit gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	contact := public.Group("/contact")
	contact.GET("/info", handler.GetContactInfo)
	contact.POST("", submitLimit, handler.SubmitContact)

	forms := contact.Group("/forms")
	forms.POST("", handler.OpenForm)
	forms.GET("/:id", handler.GetForm)
	forms.PUT("/:id/fields/:field", handler.ChangeField)
	forms.POST("/:id/validate", handler.ValidateForm)
	forms.POST("/:id/submit", submitLimit, handler.SubmitForm)
	forms.DELETE("/:id", handler.CloseForm)
}

// GetContactInfo godoc
// @Summary      Contact Information
// @Description  Company phones, emails, office address, business hours and selectable subjects.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SiteInfo}
// @Router       /contact/info [get]
func (h *ContactHandler) GetContactInfo(c *gin.Context) {
	response.Success(c, http.StatusOK, "Contact information", h.contactUC.ContactInfo(c.Request.Context()))
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validate and send a complete contact form in one request. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactSubmission  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=domain.SubmissionResult}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response{error=domain.SubmissionResult}
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response{error=domain.SubmissionResult}
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid contact form").WithDetails(validation.FormatValidationErrors(err)))
		return
	}

	result, err := h.contactUC.SendContactMessage(c.Request.Context(), &req)
	if err != nil {
		c.Error(submissionError(result, err))
		return
	}

	response.Success(c, http.StatusOK, result.Notification.Title, result)
}

// OpenForm godoc
// @Summary      Open Contact Form
// @Description  Create an empty, isolated contact form instance.
// @Tags         contact
// @Produce      json
// @Success      201  {object}  response.Response{data=domain.FormHandle}
// @Router       /contact/forms [post]
func (h *ContactHandler) OpenForm(c *gin.Context) {
	handle, err := h.contactUC.OpenForm(c.Request.Context())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusCreated, "Contact form opened", handle)
}

// GetForm godoc
// @Summary      Get Contact Form State
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=domain.FormState}
// @Failure      404  {object}  response.Response
// @Router       /contact/forms/{id} [get]
func (h *ContactHandler) GetForm(c *gin.Context) {
	state, err := h.contactUC.FormState(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Contact form state", state)
}

// ChangeField godoc
// @Summary      Change Contact Form Field
// @Description  Overwrite one field; clears that field's validation error only.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Form ID"
// @Param        field  path      string              true  "Field name"  Enums(firstName, lastName, email, phone, subject, message)
// @Param        body   body      FieldChangeRequest  true  "New value"
// @Success      200    {object}  response.Response{data=domain.FormState}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /contact/forms/{id}/fields/{field} [put]
func (h *ContactHandler) ChangeField(c *gin.Context) {
	field, err := domain.ParseField(c.Param("field"))
	if err != nil {
		c.Error(formError(err))
		return
	}

	var req FieldChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid field value").WithDetails(validation.FormatValidationErrors(err)))
		return
	}

	state, err := h.contactUC.ChangeField(c.Request.Context(), c.Param("id"), field, req.Value)
	if err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Field updated", state)
}

// ValidateForm godoc
// @Summary      Validate Contact Form
// @Description  Run the validation rules against the current values without changing the form.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      404  {object}  response.Response
// @Router       /contact/forms/{id}/validate [post]
func (h *ContactHandler) ValidateForm(c *gin.Context) {
	errs, err := h.contactUC.ValidateForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(formError(err))
		return
	}

	message := "Form is valid"
	if len(errs) > 0 {
		message = "Some fields need your attention."
	}
	response.Success(c, http.StatusOK, message, gin.H{"valid": len(errs) == 0, "errors": errs})
}

// SubmitForm godoc
// @Summary      Submit Contact Form Instance
// @Description  Validate and send the form's current values. A second submit while one is in flight is rejected.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=domain.SubmissionResult}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response{error=domain.SubmissionResult}
// @Failure      502  {object}  response.Response{error=domain.SubmissionResult}
// @Router       /contact/forms/{id}/submit [post]
func (h *ContactHandler) SubmitForm(c *gin.Context) {
	result, err := h.contactUC.SubmitForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(submissionError(result, err))
		return
	}
	response.Success(c, http.StatusOK, result.Notification.Title, result)
}

// CloseForm godoc
// @Summary      Close Contact Form
// @Description  Discard a form instance and everything typed into it.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /contact/forms/{id} [delete]
func (h *ContactHandler) CloseForm(c *gin.Context) {
	if err := h.contactUC.CloseForm(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(formError(err))
		return
	}
	response.Success(c, http.StatusOK, "Contact form closed", nil)
}

// formError maps form lookup and editing errors to HTTP errors
func formError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, domain.ErrFormNotFound):
		return apperror.NotFound("Contact form not found or expired")
	case errors.Is(err, domain.ErrUnknownField):
		return apperror.BadRequest("Unknown contact form field")
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return apperror.Conflict("Your message is already being sent", err)
	default:
		return apperror.Internal(err)
	}
}

// submissionError maps a failed submit attempt; validation and transport failures
// carry the attempt result so the page can render field errors and the notification.
func submissionError(result *domain.SubmissionResult, err error) *apperror.AppError {
	switch {
	case errors.Is(err, domain.ErrValidationFailed):
		return apperror.UnprocessableEntity("Please check your input", err).WithDetails(result)
	case errors.Is(err, domain.ErrTransport):
		return apperror.BadGateway("Error sending message", err).WithDetails(result)
	default:
		return formError(err)
	}
}
