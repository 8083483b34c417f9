package services

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"

	"medialeader/config"
)

// ErrMailerNotConfigured is returned when SMTP credentials are absent.
// Signup treats a failed dispatch as a degraded success, so callers
// surface a distinct message instead of failing the whole request.
var ErrMailerNotConfigured = errors.New("email transport is not configured")

// Mailer delivers verification mail. The auth handler receives one at
// construction; there is no process-wide transporter.
type Mailer interface {
	SendVerificationEmail(to, name, link string) error
}

type SMTPMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	smtpCfg := cfg.SMTP
	if smtpCfg.Host == "" || smtpCfg.Port == "" || smtpCfg.Username == "" || smtpCfg.Password == "" || smtpCfg.From == "" {
		return nil, ErrMailerNotConfigured
	}
	return &SMTPMailer{cfg: &smtpCfg}, nil
}

func (m *SMTPMailer) SendVerificationEmail(to, name, link string) error {
	subject := "Verify Your Email - MediaLeader"
	body := verificationEmailBody(name, link)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-version: 1.0;\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n"+
		"%s\r\n", to, subject, body))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, message); err != nil {
		log.Printf("Failed to send verification email to %s: %v", to, err)
		return err
	}

	log.Printf("Verification email sent to %s", to)
	return nil
}

func verificationEmailBody(name, link string) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2563eb;">Welcome to MediaLeader!</h2>
			<p>Hi %s,</p>
			<p>Thank you for signing up. Please click the button below to verify your email address:</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="%s" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
			</div>
			<p>If the button doesn't work, you can also copy and paste this link into your browser:</p>
			<p style="word-break: break-all; color: #4b5563;">%s</p>
			<p>This link will expire in 1 hour.</p>
			<p>Best regards,<br>The MediaLeader Team</p>
		</div>
	`, name, link, link)
}

// DisabledMailer stands in when no SMTP configuration is present. Every
// send reports ErrMailerNotConfigured so callers can acknowledge in
// degraded mode.
type DisabledMailer struct{}

func NewDisabledMailer() *DisabledMailer { return &DisabledMailer{} }

func (*DisabledMailer) SendVerificationEmail(to, name, link string) error {
	return ErrMailerNotConfigured
}
