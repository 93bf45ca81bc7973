package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendLeadAssignedEmail(ctx context.Context, toEmail, contractorName, tradeType, zipCode string) error {
	content, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New lead assigned",
			Heading: "A new lead is waiting for you",
		},
		ContractorName: contractorName,
		TradeType:      tradeType,
		ZipCode:        zipCode,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadAssigned, content)
}

func (s *SMTPSender) SendLeadRevealedEmail(ctx context.Context, toEmail, requesterName, businessName string) error {
	content, err := renderEmailTemplate("lead_revealed.html", leadRevealedEmailData{
		baseEmailData: baseEmailData{
			Title:   "A contractor will be in touch",
			Heading: "A contractor will be in touch",
		},
		RequesterName: requesterName,
		BusinessName:  businessName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadRevealed, content)
}

func (s *SMTPSender) SendLeadMatchedEmail(ctx context.Context, toEmail, contractorName, tradeType string) error {
	content, err := renderEmailTemplate("lead_matched.html", leadMatchedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Contact confirmed",
			Heading: "Your lead confirmed contact",
		},
		ContractorName: contractorName,
		TradeType:      tradeType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadMatched, content)
}

func (s *SMTPSender) SendCreditsGrantedEmail(ctx context.Context, toEmail, contractorName string, credits, balance int) error {
	content, err := renderEmailTemplate("credits_granted.html", creditsGrantedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Credits added",
			Heading: "Your credits have been added",
		},
		ContractorName: contractorName,
		Credits:        credits,
		Balance:        balance,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectCreditsGranted, content)
}
