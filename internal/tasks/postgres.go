package tasks

import (
	"context"
	"database/sql"
	"errors"

	"scholarship-tracker/internal/common/database"
	"scholarship-tracker/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	insertTaskQuery = `
		INSERT INTO tasks (id, user_id, scholarship_id, title, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertSubtaskQuery = `
		INSERT INTO subtasks (id, task_id, title, description, completed, position)
		VALUES ($1, $2, $3, $4, $5, $6)`

	selectTasksQuery = `
		SELECT t.id, t.user_id, t.scholarship_id, t.title, t.deadline, t.created_at,
		       s.id, s.title, s.description, s.completed, s.position
		FROM tasks t
		LEFT JOIN subtasks s ON s.task_id = t.id
		WHERE t.user_id = $1`

	toggleSubtaskQuery = `
		UPDATE subtasks s
		SET completed = NOT s.completed
		FROM tasks t
		WHERE s.id = $3 AND s.task_id = $2 AND t.id = s.task_id AND t.user_id = $1
		RETURNING s.completed`

	taskExistsQuery = `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`

	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
)

func (p *PostgresStore) Create(ctx context.Context, task models.Task) error {
	return database.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertTaskQuery,
			task.ID, task.UserID, task.ScholarshipID, task.Title, task.Deadline, task.CreatedAt); err != nil {
			return err
		}
		for _, st := range task.Subtasks {
			if _, err := tx.ExecContext(ctx, insertSubtaskQuery,
				st.ID, task.ID, st.Title, st.Description, st.Completed, st.Position); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PostgresStore) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	list, err := p.query(ctx, selectTasksQuery+` AND t.id = $2 ORDER BY s.position`, userID, taskID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrTaskNotFound
	}
	return &list[0], nil
}

func (p *PostgresStore) List(ctx context.Context, userID string) ([]models.Task, error) {
	return p.query(ctx, selectTasksQuery+` ORDER BY t.created_at, t.id, s.position`, userID)
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...interface{}) ([]models.Task, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Task{}
	index := map[string]int{}
	for rows.Next() {
		var (
			t        models.Task
			deadline sql.NullTime
			stID     sql.NullString
			stTitle  sql.NullString
			stDesc   sql.NullString
			stDone   sql.NullBool
			stPos    sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.ScholarshipID, &t.Title, &deadline, &t.CreatedAt,
			&stID, &stTitle, &stDesc, &stDone, &stPos); err != nil {
			return nil, err
		}
		i, seen := index[t.ID]
		if !seen {
			if deadline.Valid {
				d := deadline.Time
				t.Deadline = &d
			}
			t.Subtasks = []models.Subtask{}
			out = append(out, t)
			i = len(out) - 1
			index[t.ID] = i
		}
		if stID.Valid {
			out[i].Subtasks = append(out[i].Subtasks, models.Subtask{
				ID:          stID.String,
				TaskID:      t.ID,
				Title:       stTitle.String,
				Description: stDesc.String,
				Completed:   stDone.Bool,
				Position:    int(stPos.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Recompute()
	}
	return out, nil
}

func (p *PostgresStore) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (bool, error) {
	var completed bool
	err := p.db.QueryRowContext(ctx, toggleSubtaskQuery, userID, taskID, subtaskID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := p.db.QueryRowContext(ctx, taskExistsQuery, taskID, userID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrTaskNotFound
		}
		return false, ErrSubtaskNotFound
	}
	return completed, err
}

// Delete relies on ON DELETE CASCADE for the subtasks.
func (p *PostgresStore) Delete(ctx context.Context, userID, taskID string) error {
	res, err := p.db.ExecContext(ctx, deleteTaskQuery, taskID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
