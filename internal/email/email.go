// Package email renders and delivers transactional notifications.
package email

import (
	"context"
	"fmt"

	"leadmarket_backend/platform/config"
)

// Sender delivers the marketplace notification emails.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, contractorName, tradeType, zipCode string) error
	SendLeadRevealedEmail(ctx context.Context, toEmail, requesterName, businessName string) error
	SendLeadMatchedEmail(ctx context.Context, toEmail, contractorName, tradeType string) error
	SendCreditsGrantedEmail(ctx context.Context, toEmail, contractorName string, credits, balance int) error
}

// NoopSender is used when email delivery is not configured. Notifications
// are best-effort; the core flows never depend on them.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(ctx context.Context, toEmail, contractorName, tradeType, zipCode string) error {
	return nil
}

func (NoopSender) SendLeadRevealedEmail(ctx context.Context, toEmail, requesterName, businessName string) error {
	return nil
}

func (NoopSender) SendLeadMatchedEmail(ctx context.Context, toEmail, contractorName, tradeType string) error {
	return nil
}

func (NoopSender) SendCreditsGrantedEmail(ctx context.Context, toEmail, contractorName string, credits, balance int) error {
	return nil
}

// NewSender picks the delivery backend from configuration. Without SMTP
// settings it falls back to the no-op sender.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetEmailFromAddress() == "" {
		return nil, fmt.Errorf("email enabled but no from address configured")
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
