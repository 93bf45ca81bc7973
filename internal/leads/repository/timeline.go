package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Timeline event types recorded on the lead audit trail.
const (
	EventLeadCreated         = "lead_created"
	EventLeadAssigned        = "lead_assigned"
	EventEligibilityBypassed = "eligibility_bypassed"
	EventLeadRevealed        = "lead_revealed"
	EventLeadMatched         = "lead_matched"
	EventLeadClosed          = "lead_closed"
	EventRevealCompensated   = "reveal_compensated"
	EventRevealUnreconciled  = "reveal_unreconciled"
	EventCheckoutInitiated   = "checkout_initiated"
)

// TimelineEvent is one audit entry on a lead.
type TimelineEvent struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ActorID   *uuid.UUID
	EventType string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// AddEvent appends an audit entry. Audit writes are best-effort from the
// caller's perspective; they must not abort the business operation.
func (r *Repository) AddEvent(ctx context.Context, leadID uuid.UUID, actorID *uuid.UUID, eventType string, metadata map[string]interface{}) error {
	var payload []byte
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = encoded
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_events (lead_id, actor_id, event_type, metadata)
		VALUES ($1, $2, $3, $4)
	`, leadID, actorID, eventType, payload)
	return err
}

// ListEvents returns a lead's audit trail, oldest first.
func (r *Repository) ListEvents(ctx context.Context, leadID uuid.UUID) ([]TimelineEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, actor_id, event_type, metadata, created_at
		FROM lead_events
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]TimelineEvent, 0)
	for rows.Next() {
		var event TimelineEvent
		var payload []byte
		if err := rows.Scan(&event.ID, &event.LeadID, &event.ActorID, &event.EventType, &payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
