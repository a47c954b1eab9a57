// Package users persists the approved-user records behind the admin
// surface's user management tab.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateEmail is the store-level unique constraint on email.
	ErrDuplicateEmail = errors.New("email already approved")
	ErrNotFound       = errors.New("approved user not found")
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApprovedUser is a record of who may access the kiosk surfaces.
type ApprovedUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	ApprovedBy string    `json:"approvedBy"`
	CreatedAt  time.Time `json:"created_at"`
}

// DB is the subset of *pgxpool.Pool the store needs; mocked in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// List returns all records ordered by creation time, newest first.
func (s *Store) List(ctx context.Context) ([]ApprovedUser, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, email, status, approved_by, created_at
		FROM approved_users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ApprovedUser
	for rows.Next() {
		var u ApprovedUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Status, &u.ApprovedBy, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Insert adds a new approved-user record. Duplicate emails are rejected by
// the unique constraint and surfaced as ErrDuplicateEmail.
func (s *Store) Insert(ctx context.Context, email, status, approver string) (ApprovedUser, error) {
	var u ApprovedUser
	err := s.db.QueryRow(ctx, `
		INSERT INTO approved_users (email, status, approved_by)
		VALUES ($1, $2, $3)
		RETURNING id, email, status, approved_by, created_at
	`, email, status, approver).Scan(&u.ID, &u.Email, &u.Status, &u.ApprovedBy, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ApprovedUser{}, ErrDuplicateEmail
	}
	if err != nil {
		return ApprovedUser{}, err
	}
	return u, nil
}

// UpdateStatus transitions a record to approved/rejected and stamps who
// decided.
func (s *Store) UpdateStatus(ctx context.Context, id, status, approver string) (ApprovedUser, error) {
	var u ApprovedUser
	err := s.db.QueryRow(ctx, `
		UPDATE approved_users
		SET status = $2, approved_by = $3
		WHERE id = $1
		RETURNING id, email, status, approved_by, created_at
	`, id, status, approver).Scan(&u.ID, &u.Email, &u.Status, &u.ApprovedBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ApprovedUser{}, ErrNotFound
	}
	if err != nil {
		return ApprovedUser{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
