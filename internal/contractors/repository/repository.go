// Package repository persists contractor profiles and the credit ledger.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a contractor does not exist.
	ErrNotFound = errors.New("contractor not found")
	// ErrInsufficientCredits is returned by DebitOne when the balance is zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// License review states.
const (
	LicenseStatusPending  = "PENDING"
	LicenseStatusActive   = "ACTIVE"
	LicenseStatusRejected = "REJECTED"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Contractor shares its id with the users row it belongs to, so the JWT
// subject doubles as the contractor id.
type Contractor struct {
	ID            uuid.UUID
	Name          string
	BusinessName  string
	LicenseNumber string
	LicenseClass  string
	LicenseStatus string
	Verified      bool
	CreditBalance int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateContractorParams struct {
	ID            uuid.UUID
	Name          string
	BusinessName  string
	LicenseNumber string
	LicenseClass  string
}

const contractorColumns = `id, name, business_name, license_number, license_class, license_status,
	verified, credit_balance, created_at, updated_at`

func scanContractor(row pgx.Row) (Contractor, error) {
	var c Contractor
	err := row.Scan(
		&c.ID, &c.Name, &c.BusinessName, &c.LicenseNumber, &c.LicenseClass,
		&c.LicenseStatus, &c.Verified, &c.CreditBalance, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *Repository) Create(ctx context.Context, params CreateContractorParams) (Contractor, error) {
	return scanContractor(r.pool.QueryRow(ctx, `
		INSERT INTO contractors (id, name, business_name, license_number, license_class)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contractorColumns,
		params.ID, params.Name, params.BusinessName, params.LicenseNumber, params.LicenseClass,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Contractor, error) {
	c, err := scanContractor(r.pool.QueryRow(ctx, `
		SELECT `+contractorColumns+` FROM contractors WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contractor{}, ErrNotFound
	}
	return c, err
}

// List returns contractors, optionally filtered by license status.
func (r *Repository) List(ctx context.Context, licenseStatus string) ([]Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors`
	args := []interface{}{}
	if licenseStatus != "" {
		query += ` WHERE license_status = $1`
		args = append(args, licenseStatus)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contractors := make([]Contractor, 0)
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, err
		}
		contractors = append(contractors, c)
	}
	return contractors, rows.Err()
}

// UpdateLicenseStatus records the outcome of an admin license review. The
// verification flag is not touched; it tracks identity checks, not licensing.
func (r *Repository) UpdateLicenseStatus(ctx context.Context, id uuid.UUID, status string) (Contractor, error) {
	c, err := scanContractor(r.pool.QueryRow(ctx, `
		UPDATE contractors
		SET license_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+contractorColumns,
		id, status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contractor{}, ErrNotFound
	}
	return c, err
}

// SetVerified records the admin identity-verification decision.
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (Contractor, error) {
	c, err := scanContractor(r.pool.QueryRow(ctx, `
		UPDATE contractors
		SET verified = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+contractorColumns,
		id, verified,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contractor{}, ErrNotFound
	}
	return c, err
}

// Balance returns the current credit balance.
func (r *Repository) Balance(ctx context.Context, id uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		SELECT credit_balance FROM contractors WHERE id = $1
	`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

// DebitOne decrements the balance by one if it is positive. The guard runs
// inside the UPDATE, so two debits racing for the last credit cannot both
// succeed and the balance never goes negative.
func (r *Repository) DebitOne(ctx context.Context, id uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		UPDATE contractors
		SET credit_balance = credit_balance - 1, updated_at = now()
		WHERE id = $1 AND credit_balance > 0
		RETURNING credit_balance
	`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the contractor is unknown or the balance was zero.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, ErrInsufficientCredits
	}
	return balance, err
}

// AddCredits increases the balance by the given amount. Used for the
// compensating refund (amount 1) and for checkout grants.
func (r *Repository) AddCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		UPDATE contractors
		SET credit_balance = credit_balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING credit_balance
	`, id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}
