package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const userColumns = `id, email, name, username, credits, created_at, updated_at`

// CreateUser inserts a user with the given starting credits. Usernames are
// stored lower-case and must be unique.
func (s *Store) CreateUser(ctx context.Context, email, name, username string, credits int) (*User, error) {
	ts := now()
	u := &User{
		Email:     strings.TrimSpace(email),
		Name:      strings.TrimSpace(name),
		Username:  strings.ToLower(strings.TrimSpace(username)),
		Credits:   credits,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err := s.db.QueryRowContext(ctx, s.q(`
INSERT INTO users (email, name, username, credits, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`), u.Email, u.Name, u.Username, u.Credits, ts, ts).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", u.Username, ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE username = ?`),
		strings.ToLower(strings.TrimSpace(username))))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DeductCredit takes one credit from the user in a single conditional update
// and returns the remaining balance.
func (s *Store) DeductCredit(ctx context.Context, userID int64) (int, error) {
	var remaining int
	err := s.db.QueryRowContext(ctx, s.q(`
UPDATE users
SET credits = credits - 1, updated_at = ?
WHERE id = ? AND credits > 0
RETURNING credits
`), now(), userID).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	return 0, ErrInsufficientCredits
}

func (s *Store) AddCredits(ctx context.Context, userID int64, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must not be negative, got %d", amount)
	}
	var balance int
	err := s.db.QueryRowContext(ctx, s.q(`
UPDATE users
SET credits = credits + ?, updated_at = ?
WHERE id = ?
RETURNING credits
`), amount, now(), userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

// RefillCredits raises every balance below floor to floor and returns the
// number of users topped up.
func (s *Store) RefillCredits(ctx context.Context, floor int) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
UPDATE users
SET credits = ?, updated_at = ?
WHERE credits < ?
`), floor, now(), floor)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
