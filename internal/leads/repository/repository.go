package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadmarket_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a lead does not exist.
	ErrNotFound = errors.New("lead not found")
	// ErrNoMatch is returned when a conditional update matched no row: the
	// lead exists but its current state does not satisfy the guard. Callers
	// reload the lead to classify the conflict.
	ErrNoMatch = errors.New("lead state did not match condition")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                   uuid.UUID
	RequesterID          *uuid.UUID
	ContactName          string
	Phone                string
	Email                *string
	ZipCode              string
	TradeType            string
	Description          string
	Status               domain.Status
	AssignedContractorID *uuid.UUID
	AssignedAt           *time.Time
	RevealStatus         domain.RevealStatus
	RevealedAt           *time.Time
	Tier                 domain.Tier
	PriceCents           *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type CreateLeadParams struct {
	RequesterID *uuid.UUID
	ContactName string
	Phone       string
	Email       *string
	ZipCode     string
	TradeType   string
	Description string
	Tier        domain.Tier
	PriceCents  *int64
}

const leadColumns = `id, requester_id, contact_name, phone, email, zip_code, trade_type, description,
	status, assigned_contractor_id, assigned_at, reveal_status, revealed_at, tier, price_cents,
	created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var (
		lead   Lead
		status string
	)
	err := row.Scan(
		&lead.ID, &lead.RequesterID, &lead.ContactName, &lead.Phone, &lead.Email,
		&lead.ZipCode, &lead.TradeType, &lead.Description,
		&status, &lead.AssignedContractorID, &lead.AssignedAt,
		&lead.RevealStatus, &lead.RevealedAt, &lead.Tier, &lead.PriceCents,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, err
	}
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return Lead{}, fmt.Errorf("lead %s: unknown status %q", lead.ID, status)
	}
	lead.Status = parsed
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (requester_id, contact_name, phone, email, zip_code, trade_type, description, tier, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+leadColumns,
		params.RequesterID, params.ContactName, params.Phone, params.Email,
		params.ZipCode, params.TradeType, params.Description, string(params.Tier), params.PriceCents,
	))
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// ListUnassigned returns the unassigned pool: OPEN leads with no contractor.
// Assignment, not reveal, is what removes a lead from this view.
func (r *Repository) ListUnassigned(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_contractor_id IS NULL AND status = 'OPEN'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListByRequester returns a requester's own leads, newest first.
func (r *Repository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListByContractor returns leads assigned to a contractor, newest first.
func (r *Repository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_contractor_id = $1
		ORDER BY assigned_at DESC
	`, contractorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// AssignContractor binds a contractor to an OPEN, unassigned lead.
// The guard runs inside the UPDATE so two concurrent assigns cannot both
// succeed; the loser gets ErrNoMatch.
func (r *Repository) AssignContractor(ctx context.Context, leadID, contractorID uuid.UUID, at time.Time) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET assigned_contractor_id = $2, assigned_at = $3, status = 'ASSIGNED', updated_at = now()
		WHERE id = $1 AND assigned_contractor_id IS NULL AND status = 'OPEN'
		RETURNING `+leadColumns,
		leadID, contractorID, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNoMatch
	}
	return lead, err
}

// MarkRevealed records the first disclosure of contact info and moves the
// lead ASSIGNED→CLAIMED. Guarded on the assignee and the not-yet-revealed
// state so a concurrent duplicate reveal cannot double-apply.
func (r *Repository) MarkRevealed(ctx context.Context, leadID, contractorID uuid.UUID, at time.Time) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET reveal_status = 'revealed', revealed_at = $3, status = 'CLAIMED', updated_at = now()
		WHERE id = $1 AND assigned_contractor_id = $2 AND status = 'ASSIGNED' AND reveal_status = 'not_revealed'
		RETURNING `+leadColumns,
		leadID, contractorID, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNoMatch
	}
	return lead, err
}

// ConfirmMatch completes the handshake, moving CLAIMED→MATCHED. Guarded on
// the owning requester so only the lead's owner can confirm.
func (r *Repository) ConfirmMatch(ctx context.Context, leadID, requesterID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = 'MATCHED', updated_at = now()
		WHERE id = $1 AND requester_id = $2 AND status = 'CLAIMED'
		RETURNING `+leadColumns,
		leadID, requesterID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNoMatch
	}
	return lead, err
}

// Close moves a lead to the terminal CLOSED state from any other state.
func (r *Repository) Close(ctx context.Context, leadID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = 'CLOSED', updated_at = now()
		WHERE id = $1 AND status <> 'CLOSED'
		RETURNING `+leadColumns,
		leadID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNoMatch
	}
	return lead, err
}

// ContractorActivity aggregates assignment history for the advisory ranking.
func (r *Repository) ContractorActivity(ctx context.Context) (map[uuid.UUID]domain.ContractorActivity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT assigned_contractor_id, COUNT(*), MAX(assigned_at)
		FROM leads
		WHERE assigned_contractor_id IS NOT NULL
		GROUP BY assigned_contractor_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make(map[uuid.UUID]domain.ContractorActivity)
	for rows.Next() {
		var a domain.ContractorActivity
		if err := rows.Scan(&a.ContractorID, &a.AssignedLeadCount, &a.LastAssignedAt); err != nil {
			return nil, err
		}
		activity[a.ContractorID] = a
	}
	return activity, rows.Err()
}
