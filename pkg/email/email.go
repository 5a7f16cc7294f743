package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"os"
	"time"

	"logistics-contact-backend/config"
	"logistics-contact-backend/internal/domain"
)

// EmailService delivers contact notifications via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	toEmail   string
	timeout   time.Duration
	tmpl      *template.Template
	dialer    net.Dialer
}

// contactEmailData holds the data for contact form emails
type contactEmailData struct {
	SenderName  string
	SenderEmail string
	Phone       string
	Subject     string
	Message     string
	TemplateID  string
}

// NewEmailService creates a new email service with SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername // Brevo uses login email as from address
	}
	timeout := time.Duration(cfg.SMTPTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		toEmail:   cfg.ContactEmailTo,
		timeout:   timeout,
		tmpl:      template.Must(template.New("contact").Parse(contactEmailTemplate)),
	}
}

// contactEmailTemplate is the HTML template for contact form emails
const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f97316; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .value { margin-top: 5px; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #f97316; margin-top: 10px; white-space: pre-wrap; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Subject}}</h1>
        </div>
        <div class="content">
            <div class="field">
                <div class="label">From:</div>
                <div class="value">{{.SenderName}} ({{.SenderEmail}})</div>
            </div>
            <div class="field">
                <div class="label">Phone:</div>
                <div class="value">{{.Phone}}</div>
            </div>
            <div class="field">
                <div class="label">Message:</div>
                <div class="message-box">{{.Message}}</div>
            </div>
        </div>
        <div class="footer">
            <p>This email was sent from the website contact form{{if .TemplateID}} ({{.TemplateID}}){{end}}.</p>
            <p>To reply, send an email to: {{.SenderEmail}}</p>
        </div>
    </div>
</body>
</html>`

// Send renders the contact notification from the relay template parameters and mails it
// to the configured recipient. The template ID is only echoed in the footer.
// The whole SMTP exchange ends at the context deadline, or after the configured timeout.
func (s *EmailService) Send(ctx context.Context, templateID string, params domain.TemplateParams) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := contactEmailData{
		SenderName:  params["from_name"],
		SenderEmail: params["from_email"],
		Phone:       params["phone"],
		Subject:     params["subject"],
		Message:     params["message"],
		TemplateID:  templateID,
	}

	msg, err := s.buildMessage(data)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage renders the MIME message. Submitted values never become raw header text:
// Reply-To is only set for an address net/mail accepts, and the subject is Q-encoded.
func (s *EmailService) buildMessage(data contactEmailData) ([]byte, error) {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.fromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", s.toEmail)
	if replyTo, err := mail.ParseAddress(data.SenderEmail); err == nil {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo.String())
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "Contact Form: "+data.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

// deliver runs the SMTP conversation on a connection bound to ctx
func (s *EmailService) deliver(ctx context.Context, msg []byte) error {
	conn, err := s.dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return contextError(ctx, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// unblocks any pending read or write on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return contextError(ctx, err)
	}
	defer c.Close()

	if err := s.converse(c, msg); err != nil {
		return contextError(ctx, err)
	}
	return nil
}

// contextError marks a connection failure caused by the deadline or cancellation
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(err, ctxErr)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return errors.Join(err, context.DeadlineExceeded)
	}
	return err
}

func (s *EmailService) converse(c *smtp.Client, msg []byte) error {
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("AUTH"); !ok {
		return errors.New("smtp: server doesn't support AUTH")
	}
	if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
		return err
	}
	if err := c.Mail(s.fromEmail); err != nil {
		return err
	}
	if err := c.Rcpt(s.toEmail); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.toEmail != ""
}
