package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scholarship-tracker/internal/models"

	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const fileColumns = `id, user_id, category, name, path, size, content_type, state, uploaded_at, updated_at`

func (p *PostgresStore) InsertPending(ctx context.Context, f models.FileRef) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, category, name, path, size, content_type, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')`,
		f.ID, f.UserID, string(f.Category), f.Name, f.Path, f.Size, f.ContentType)
	return err
}

func (p *PostgresStore) SetState(ctx context.Context, userID, id, state string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE documents SET state = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, state)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, userID, id string) (*models.FileRef, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	return f, err
}

func (p *PostgresStore) ListConfirmed(ctx context.Context, userID string) ([]models.FileRef, error) {
	return p.query(ctx,
		`SELECT `+fileColumns+` FROM documents WHERE user_id = $1 AND state = 'confirmed' ORDER BY uploaded_at, name`,
		userID)
}

func (p *PostgresStore) ListStale(ctx context.Context, states []string, cutoff time.Time) ([]models.FileRef, error) {
	return p.query(ctx,
		`SELECT `+fileColumns+` FROM documents WHERE state = ANY($1) AND updated_at < $2 ORDER BY updated_at`,
		pq.Array(states), cutoff)
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...interface{}) ([]models.FileRef, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FileRef
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row scanner) (*models.FileRef, error) {
	var (
		f        models.FileRef
		category string
	)
	if err := row.Scan(&f.ID, &f.UserID, &category, &f.Name, &f.Path, &f.Size, &f.ContentType, &f.State, &f.UploadedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Category = models.CategoryKey(category)
	return &f, nil
}
