package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

// Config carries the SMTP connection settings and the frontend base URL the
// emailed links point at
type Config struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// SMTPMailer delivers transactional mail over SMTP
type SMTPMailer struct {
	dialer *gomail.Dialer
	config Config
	logger coreport.Logger
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(config Config, logger coreport.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		config: config,
		logger: logger,
	}
}

// SendVerificationEmail mails the email-confirmation link
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", m.config.FrontendURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Confirm your email address to activate your account:</p>"+
			"<p><a href=%q>Verify email</a></p>"+
			"<p>The link expires in 24 hours. If you did not sign up, ignore this message.</p>",
		name, link,
	)
	return m.send(ctx, to, "Confirm your email", body)
}

// SendPasswordResetEmail mails the password-reset link
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", m.config.FrontendURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>A password reset was requested for your account:</p>"+
			"<p><a href=%q>Reset password</a></p>"+
			"<p>The link expires in 1 hour. If you did not request it, ignore this message.</p>",
		name, link,
	)
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.config.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.Error("Failed to send email", map[string]any{
			"subject": subject,
			"error":   err.Error(),
		})
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
