package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionStore(client, 30*time.Minute), mr
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	leadID := uuid.New()
	contractorID := uuid.New()
	created, err := store.Create(ctx, &leadID, contractorID, 2500, 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	loaded, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded.ContractorID != contractorID {
		t.Errorf("contractorId = %s, want %s", loaded.ContractorID, contractorID)
	}
	if loaded.LeadID == nil || *loaded.LeadID != leadID {
		t.Errorf("leadId = %v, want %s", loaded.LeadID, leadID)
	}
	if loaded.AmountCents != 2500 || loaded.Credits != 1 {
		t.Errorf("amount/credits = %d/%d, want 2500/1", loaded.AmountCents, loaded.Credits)
	}
}

func TestConsumeRemovesSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, uuid.New(), 12500, 5)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	consumed, err := store.Consume(ctx, created.ID)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if consumed.Credits != 5 {
		t.Errorf("credits = %d, want 5", consumed.Credits)
	}

	if _, err := store.Consume(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Consume() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, uuid.New(), 2500, 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mr.FastForward(31 * time.Minute)

	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrSessionNotFound", err)
	}
}
