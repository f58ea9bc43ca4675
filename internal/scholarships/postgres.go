package scholarships

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scholarship-tracker/internal/common/database"
	"scholarship-tracker/internal/models"

	"github.com/lib/pq"
)

// PostgresStore keeps scholarships in user_scholarships, one row each.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	profileExistsQuery = `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`

	listQuery = `
		SELECT data, status, version
		FROM user_scholarships
		WHERE user_id = $1
		ORDER BY position, created_at, id`

	getQuery = `
		SELECT data, status, version
		FROM user_scholarships
		WHERE user_id = $1 AND id = $2`

	// The position sub-select only applies to fresh rows; updates keep theirs.
	upsertQuery = `
		INSERT INTO user_scholarships (user_id, id, position, status, data, version)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM user_scholarships WHERE user_id = $1), $3, $4, 1)
		ON CONFLICT (user_id, id) DO UPDATE
		SET status = EXCLUDED.status,
		    data = EXCLUDED.data,
		    version = user_scholarships.version + 1,
		    updated_at = NOW()
		WHERE $5 = 0 OR user_scholarships.version = $5
		RETURNING version`

	versionQuery = `SELECT version FROM user_scholarships WHERE user_id = $1 AND id = $2`

	deleteMatchedQuery = `DELETE FROM user_scholarships WHERE user_id = $1 AND status = 'matched'`

	nextPositionQuery = `SELECT COALESCE(MAX(position), 0) FROM user_scholarships WHERE user_id = $1`

	insertMatchQuery = `
		INSERT INTO user_scholarships (user_id, id, position, status, data, version)
		VALUES ($1, $2, $3, 'matched', $4, 1)
		ON CONFLICT (user_id, id) DO NOTHING`
)

func (p *PostgresStore) ProfileExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := p.db.QueryRowContext(ctx, profileExistsQuery, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (p *PostgresStore) List(ctx context.Context, userID string) ([]models.Scholarship, error) {
	rows, err := p.db.QueryContext(ctx, listQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Scholarship{}
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Get(ctx context.Context, userID, id string) (*models.Scholarship, error) {
	s, err := scanScholarship(p.db.QueryRowContext(ctx, getQuery, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanScholarship(row scanner) (*models.Scholarship, error) {
	var (
		data    []byte
		status  string
		version int64
	)
	if err := row.Scan(&data, &status, &version); err != nil {
		return nil, err
	}
	var s models.Scholarship
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scholarship: %w", err)
	}
	s.Status = status
	s.Version = version
	s.Documents = s.Documents.Normalize()
	return &s, nil
}

func encode(s models.Scholarship) ([]byte, error) {
	s.Version = 0
	return json.Marshal(s)
}

func (p *PostgresStore) Upsert(ctx context.Context, userID string, s models.Scholarship, expectedVersion int64) (*models.Scholarship, error) {
	data, err := encode(s)
	if err != nil {
		return nil, err
	}

	var version int64
	err = p.db.QueryRowContext(ctx, upsertQuery, userID, s.ID, s.Status, data, expectedVersion).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		var actual int64
		if verr := p.db.QueryRowContext(ctx, versionQuery, userID, s.ID).Scan(&actual); verr != nil {
			return nil, verr
		}
		return nil, &ConflictError{ID: s.ID, Expected: expectedVersion, Actual: actual}
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("%w: profile missing for %s", ErrNotFound, userID)
		}
		return nil, err
	}
	s.Version = version
	return &s, nil
}

func (p *PostgresStore) ReplaceMatched(ctx context.Context, userID string, matches []models.Scholarship) error {
	return database.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteMatchedQuery, userID); err != nil {
			return err
		}
		var pos int64
		if err := tx.QueryRowContext(ctx, nextPositionQuery, userID).Scan(&pos); err != nil {
			return err
		}
		for _, s := range matches {
			data, err := encode(s)
			if err != nil {
				return err
			}
			pos++
			if _, err := tx.ExecContext(ctx, insertMatchQuery, userID, s.ID, pos, data); err != nil {
				return err
			}
		}
		return nil
	})
}
