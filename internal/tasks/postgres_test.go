package tasks

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"scholarship-tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

var taskColumns = []string{
	"id", "user_id", "scholarship_id", "title", "deadline", "created_at",
	"s_id", "s_title", "s_description", "s_completed", "s_position",
}

func TestPostgresStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("t1", "user-1", "s1", "Title", nil, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subtasks")).
		WithArgs("st1", "t1", "One", "", false, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Create(context.Background(), models.Task{
		ID: "t1", UserID: "user-1", ScholarshipID: "s1", Title: "Title", CreatedAt: created,
		Subtasks: []models.Subtask{{ID: "st1", Title: "One"}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_GroupsSubtasks(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks t")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow("t1", "user-1", "s1", "A", deadline, created, "st1", "One", "", true, 0).
			AddRow("t1", "user-1", "s1", "A", deadline, created, "st2", "Two", "", true, 1).
			AddRow("t2", "user-1", "s2", "B", nil, created, nil, nil, nil, nil, nil))

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Subtasks, 2)
	assert.True(t, list[0].Completed)
	require.NotNil(t, list[0].Deadline)
	assert.Equal(t, deadline, *list[0].Deadline)
	assert.Empty(t, list[1].Subtasks)
	assert.False(t, list[1].Completed)
	assert.Nil(t, list[1].Deadline)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ToggleSubtask(t *testing.T) {
	t.Run("flips", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE subtasks")).
			WithArgs("user-1", "t1", "st1").
			WillReturnRows(sqlmock.NewRows([]string{"completed"}).AddRow(true))

		done, err := store.ToggleSubtask(context.Background(), "user-1", "t1", "st1")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("unknown subtask", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE subtasks")).
			WithArgs("user-1", "t1", "zz").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("t1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := store.ToggleSubtask(context.Background(), "user-1", "t1", "zz")
		assert.ErrorIs(t, err, ErrSubtaskNotFound)
	})

	t.Run("unknown task", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE subtasks")).
			WithArgs("user-1", "zz", "st1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("zz", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := store.ToggleSubtask(context.Background(), "user-1", "zz", "st1")
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs("t1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "user-1", "t1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
