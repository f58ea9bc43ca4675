package documents

import (
	"context"
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

var fileCols = []string{"id", "user_id", "category", "name", "path", "size", "content_type", "state", "uploaded_at", "updated_at"}

func TestPostgresStore_InsertPending(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs("f1", "user-1", "cv", "cv.pdf", "f1/cv.pdf", int64(10), "application/pdf").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.InsertPending(context.Background(), models.FileRef{
		ID: "f1", UserID: "user-1", Category: models.CategoryCV, Name: "cv.pdf", Path: "f1/cv.pdf", Size: 10, ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetState_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET state")).
		WithArgs("f1", "user-1", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetState(context.Background(), "user-1", "f1", "confirmed")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestPostgresStore_ListConfirmed(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND state = 'confirmed'")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(fileCols).
			AddRow("f1", "user-1", "cv", "cv.pdf", "f1/cv.pdf", 10, "application/pdf", "confirmed", now, now).
			AddRow("f2", "user-1", "lor", "l.pdf", "f2/l.pdf", 20, "application/pdf", "confirmed", now, now))

	files, err := store.ListConfirmed(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, models.CategoryLOR, files[1].Category)
	assert.Equal(t, int64(20), files[1].Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListStale(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Now().Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE state = ANY($1) AND updated_at < $2")).
		WithArgs(sqlmock.AnyArg(), cutoff).
		WillReturnRows(sqlmock.NewRows(fileCols).
			AddRow("f9", "user-1", "sop", "s.pdf", "f9/s.pdf", 5, "application/pdf", "pending", cutoff, cutoff))

	files, err := store.ListStale(context.Background(), []string{"pending", "deleting"}, cutoff)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "pending", files[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}
