package scholarships

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

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

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_scholarships")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"data", "status", "version"}).
			AddRow([]byte(`{"id":"a","title":"A","documents":{"cv":["x/cv.pdf"]}}`), "added", 3).
			AddRow([]byte(`{"id":"b","title":"B"}`), "matched", 1))

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "added", list[0].Status)
	assert.Equal(t, int64(3), list[0].Version)
	assert.Equal(t, []string{"x/cv.pdf"}, list[0].Documents[models.CategoryCV])
	assert.Equal(t, []string{}, list[1].Documents[models.CategoryTranscript])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_scholarships")).
		WithArgs("user-1", "zzz").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "user-1", "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_Upsert(t *testing.T) {
	t.Run("writes and returns version", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_scholarships")).
			WithArgs("user-1", "a", "added", sqlmock.AnyArg(), int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))

		out, err := store.Upsert(context.Background(), "user-1", models.Scholarship{ID: "a", Status: "added"}, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), out.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_scholarships")).
			WithArgs("user-1", "a", "added", sqlmock.AnyArg(), int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM user_scholarships")).
			WithArgs("user-1", "a").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))

		_, err := store.Upsert(context.Background(), "user-1", models.Scholarship{ID: "a", Status: "added"}, 1)
		require.ErrorIs(t, err, ErrVersionConflict)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, int64(4), conflict.Actual)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_ReplaceMatched(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_scholarships")).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(position), 0)")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_scholarships")).
		WithArgs("user-1", "x", int64(6), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_scholarships")).
		WithArgs("user-1", "y", int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.ReplaceMatched(context.Background(), "user-1", []models.Scholarship{{ID: "x"}, {ID: "y"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceMatched_RollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_scholarships")).
		WithArgs("user-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.ReplaceMatched(context.Background(), "user-1", []models.Scholarship{{ID: "x"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
