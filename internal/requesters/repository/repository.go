// Package repository persists requester profiles.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requester does not exist.
var ErrNotFound = errors.New("requester not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Requester shares its id with the users row it belongs to.
type Requester struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Phone      string
	IsVerified bool
	CreatedAt  time.Time
}

func (r *Repository) Create(ctx context.Context, id uuid.UUID, name, email, phone string) (Requester, error) {
	var req Requester
	err := r.pool.QueryRow(ctx, `
		INSERT INTO requesters (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, phone, is_verified, created_at
	`, id, name, email, phone).Scan(&req.ID, &req.Name, &req.Email, &req.Phone, &req.IsVerified, &req.CreatedAt)
	return req, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Requester, error) {
	var req Requester
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, is_verified, created_at FROM requesters WHERE id = $1
	`, id).Scan(&req.ID, &req.Name, &req.Email, &req.Phone, &req.IsVerified, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Requester{}, ErrNotFound
	}
	return req, err
}

// MarkVerified flags the requester as verified after a support check.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) (Requester, error) {
	var req Requester
	err := r.pool.QueryRow(ctx, `
		UPDATE requesters SET is_verified = TRUE WHERE id = $1
		RETURNING id, name, email, phone, is_verified, created_at
	`, id).Scan(&req.ID, &req.Name, &req.Email, &req.Phone, &req.IsVerified, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Requester{}, ErrNotFound
	}
	return req, err
}
