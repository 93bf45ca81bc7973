package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// Stable error codes returned to API clients.
const (
	CodeSessionNotFound  = "CHECKOUT_SESSION_NOT_FOUND"
	CodeInvalidSignature = "INVALID_SIGNATURE"
)

// CreditGranter applies purchased credits to a contractor's balance.
type CreditGranter interface {
	GrantCredits(ctx context.Context, contractorID uuid.UUID, amount int) (int, error)
}

type Service struct {
	store   *SessionStore
	granter CreditGranter
	cfg     config.CheckoutConfig
	pricing config.PricingConfig
	log     *logger.Logger
}

func NewService(store *SessionStore, granter CreditGranter, cfg config.CheckoutConfig, pricing config.PricingConfig, log *logger.Logger) *Service {
	return &Service{store: store, granter: granter, cfg: cfg, pricing: pricing, log: log}
}

// CreateCheckoutSession starts a checkout for a reveal blocked on credits.
// Implements the leads module's PaymentInitiator port.
func (s *Service) CreateCheckoutSession(ctx context.Context, leadID, contractorID uuid.UUID, amountCents int64) (string, error) {
	session, err := s.store.Create(ctx, &leadID, contractorID, amountCents, 1)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "checkout is temporarily unavailable", err)
	}
	return s.checkoutURL(session.ID), nil
}

// CreateTopUp starts a checkout for a credit bundle purchase.
func (s *Service) CreateTopUp(ctx context.Context, contractorID uuid.UUID, credits int) (string, error) {
	if credits <= 0 {
		return "", apperr.Validation("credit amount must be positive")
	}

	amount := int64(credits) * s.pricing.GetBaseRevealPriceCents()
	session, err := s.store.Create(ctx, nil, contractorID, amount, credits)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "checkout is temporarily unavailable", err)
	}
	return s.checkoutURL(session.ID), nil
}

// CompleteCheckout handles a verified completion webhook: the session is
// consumed exactly once and its credits are granted.
func (s *Service) CompleteCheckout(ctx context.Context, sessionID string) error {
	session, err := s.store.Consume(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperr.NotFound("checkout session not found or expired").WithCode(CodeSessionNotFound)
		}
		return apperr.Wrap(apperr.KindUnavailable, "checkout is temporarily unavailable", err)
	}

	if _, err := s.granter.GrantCredits(ctx, session.ContractorID, session.Credits); err != nil {
		return err
	}

	s.log.Info("checkout completed",
		"sessionId", session.ID,
		"contractorId", session.ContractorID.String(),
		"credits", session.Credits,
	)
	return nil
}

// VerifySignature checks the webhook HMAC over the raw body.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.GetCheckoutWebhookSecret()))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func (s *Service) checkoutURL(sessionID string) string {
	return strings.TrimRight(s.cfg.GetCheckoutBaseURL(), "/") + "/checkout/" + sessionID
}
