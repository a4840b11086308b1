// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"strings"

	"codeberg.org/oliverandrich/taskmanager/internal/config"
	"github.com/wneessen/go-mail"
)

// Service handles email sending for verification and password reset links.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendVerification sends an email verification link.
func (s *Service) SendVerification(toEmail, token string) error {
	verifyURL := fmt.Sprintf("%s/users/verify-email?token=%s", s.baseURL, token)

	body := fmt.Sprintf(`<h1>Welcome to the Task Manager!</h1>
<p>Please click the link below to verify your email address:</p>
<p><a href="%s">Verify Email</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>`, verifyURL)

	return s.send(toEmail, "Verify your email address", body)
}

// SendPasswordReset sends a password reset link. The link expires after a
// short window, which the body tells the recipient about.
func (s *Service) SendPasswordReset(toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/users/reset-password?token=%s", s.baseURL, token)

	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>We received a request to reset your password. Click the link below to reset it:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in 15 minutes. If you didn't request a password reset, you can safely ignore this email.</p>`, resetURL)

	return s.send(toEmail, "Password Reset Request", body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
