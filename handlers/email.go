package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var mailTemplateFS embed.FS

var mailTemplates = template.Must(template.ParseFS(mailTemplateFS, "templates/*.html"))

// Mail subjects
const (
	subjectVerification  = "Confirm your email"
	subjectPasswordReset = "Important: Update your account information"
)

// MailerConfig holds SMTP connection and sender details
type MailerConfig struct {
	Server        string
	Port          int
	Username      string
	Password      string
	From          string
	FromName      string
	StartTLS      bool
	SSLTLS        bool
	ResetTokenTTL time.Duration
}

// mailData carries values into the email templates
type mailData struct {
	Username string
	Link     string
}

// Mailer sends transactional email over SMTP
type Mailer struct {
	client   *mail.Client
	from     string
	fromName string
	resetTTL time.Duration
	logger   *MailLogger
}

// NewMailer creates a mailer from SMTP settings. Without a configured server
// the mailer stays disabled and sends are logged and dropped.
func NewMailer(config MailerConfig) (*Mailer, error) {
	m := &Mailer{
		from:     config.From,
		fromName: config.FromName,
		resetTTL: config.ResetTokenTTL,
		logger:   NewMailLogger(),
	}

	if config.Server == "" {
		LogWarn("Mailer: MAIL_SERVER not configured, outgoing email disabled")
		return m, nil
	}

	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(config.Username),
		mail.WithPassword(config.Password),
	}
	switch {
	case config.SSLTLS:
		opts = append(opts, mail.WithSSL())
	case config.StartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(config.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	m.client = client

	return m, nil
}

// SendVerification sends an email confirmation link. The host is the public
// base URL of the service including the trailing slash.
func (m *Mailer) SendVerification(email, username, host string) error {
	token, err := GenerateEmailToken(email)
	if err != nil {
		m.logger.LogSend("verification", email, false, err)
		return err
	}

	data := mailData{
		Username: username,
		Link:     host + "api/auth/confirmed_email/" + token,
	}
	return m.send("verification", email, subjectVerification, "verify_email.html", data)
}

// SendPasswordReset sends a password reset link carrying the already hashed
// new password inside the token.
func (m *Mailer) SendPasswordReset(email, username, host, hashedPassword string) error {
	token, err := GenerateResetToken(email, hashedPassword, m.resetTTL)
	if err != nil {
		m.logger.LogSend("password_reset", email, false, err)
		return err
	}

	data := mailData{
		Username: username,
		Link:     host + "api/auth/confirm_reset_password/" + token,
	}
	return m.send("password_reset", email, subjectPasswordReset, "reset_password.html", data)
}

func (m *Mailer) send(kind, recipient, subject, templateName string, data mailData) error {
	if m.client == nil {
		m.logger.LogSend(kind, recipient, false, fmt.Errorf("mailer disabled"))
		return nil
	}

	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, templateName, data); err != nil {
		m.logger.LogSend(kind, recipient, false, err)
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		m.logger.LogSend(kind, recipient, false, err)
		return err
	}
	if err := msg.To(recipient); err != nil {
		m.logger.LogSend(kind, recipient, false, err)
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	err := m.client.DialAndSend(msg)
	m.logger.LogSend(kind, recipient, err == nil, err)
	return err
}
