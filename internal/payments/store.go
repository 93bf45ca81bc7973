// Package payments implements the checkout handoff: short-lived sessions in
// redis and the signed completion webhook that grants credits. No card data
// passes through this service.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a checkout session is unknown or has
// expired.
var ErrSessionNotFound = errors.New("checkout session not found")

const sessionKeyPrefix = "checkout:session:"

// Session is one pending checkout. LeadID is nil for plain credit top-ups.
type Session struct {
	ID           string     `json:"id"`
	LeadID       *uuid.UUID `json:"leadId,omitempty"`
	ContractorID uuid.UUID  `json:"contractorId"`
	AmountCents  int64      `json:"amountCents"`
	Credits      int        `json:"credits"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SessionStore keeps pending checkout sessions in redis with a TTL, so
// abandoned checkouts clean themselves up.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create persists a new session and returns it.
func (s *SessionStore) Create(ctx context.Context, leadID *uuid.UUID, contractorID uuid.UUID, amountCents int64, credits int) (Session, error) {
	session := Session{
		ID:           uuid.NewString(),
		LeadID:       leadID,
		ContractorID: contractorID,
		AmountCents:  amountCents,
		Credits:      credits,
		CreatedAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return Session{}, err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store checkout session: %w", err)
	}
	return session, nil
}

// Get loads a session by id.
func (s *SessionStore) Get(ctx context.Context, id string) (Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Consume removes a session so a webhook replay cannot grant twice.
func (s *SessionStore) Consume(ctx context.Context, id string) (Session, error) {
	payload, err := s.client.GetDel(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("consume checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}
