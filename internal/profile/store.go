// Package profile stores the user's intake profile behind a redis read-through cache.
package profile

import (
	"context"
	"database/sql"
	"errors"

	"scholarship-tracker/internal/models"
)

var ErrNotFound = errors.New("PROFILE_NOT_FOUND")

// Contact is where a user's reminders go.
type Contact struct {
	UserID string
	Email  string
	Phone  string
}

type Store interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, p models.UserProfile) error
	// Ensure creates an empty profile row when none exists.
	Ensure(ctx context.Context, userID string) error
	// Contacts lists every user with an email or phone on file.
	Contacts(ctx context.Context) ([]Contact, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	getQuery = `
		SELECT user_id, profile_text, COALESCE(to_char(date_of_birth, 'YYYY-MM-DD'), ''),
		       gender, nationality, email, phone, updated_at
		FROM profiles WHERE user_id = $1`

	upsertQuery = `
		INSERT INTO profiles (user_id, profile_text, date_of_birth, gender, nationality, email, phone, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::date, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET profile_text = EXCLUDED.profile_text,
		    date_of_birth = EXCLUDED.date_of_birth,
		    gender = EXCLUDED.gender,
		    nationality = EXCLUDED.nationality,
		    email = CASE WHEN EXCLUDED.email = '' THEN profiles.email ELSE EXCLUDED.email END,
		    phone = CASE WHEN EXCLUDED.phone = '' THEN profiles.phone ELSE EXCLUDED.phone END,
		    updated_at = NOW()`

	ensureQuery = `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	contactsQuery = `
		SELECT user_id, email, phone FROM profiles
		WHERE email <> '' OR phone <> ''
		ORDER BY user_id`
)

func (p *PostgresStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var out models.UserProfile
	err := p.db.QueryRowContext(ctx, getQuery, userID).Scan(&out.UserID, &out.ProfileText, &out.DateOfBirth,
		&out.Gender, &out.Nationality, &out.Email, &out.Phone, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PostgresStore) Upsert(ctx context.Context, pr models.UserProfile) error {
	_, err := p.db.ExecContext(ctx, upsertQuery, pr.UserID, pr.ProfileText, pr.DateOfBirth,
		pr.Gender, pr.Nationality, pr.Email, pr.Phone)
	return err
}

func (p *PostgresStore) Ensure(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, ensureQuery, userID)
	return err
}

func (p *PostgresStore) Contacts(ctx context.Context) ([]Contact, error) {
	rows, err := p.db.QueryContext(ctx, contactsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.UserID, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
