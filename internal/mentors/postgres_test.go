package mentors

import (
	"context"
	"regexp"
	"testing"
	"time"

	"scholarship-tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_CreateAppointment_UniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.CreateAppointment(context.Background(), models.Appointment{ID: "a1", TimeslotID: "t1", Date: "2026-05-04"})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateMentor_Duplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO mentors")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.CreateMentor(context.Background(), models.MentorProfile{ID: "m1", UserID: "u1"})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestPostgresStore_GetMentor(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "name", "email", "date_of_birth", "gender", "nationality", "languages",
		"profession", "scholarship", "bio", "linkedin", "drive_link", "country", "verified",
		"rating_sum", "rating_count", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM mentors WHERE id = $1")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("m1", "u1", "Ada", "a@b.com", "", "", "", "{English,French}",
			"", "", "", "", "", "UK", true, 9, 2, created))

	m, err := store.GetMentor(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "French"}, m.Languages)
	assert.True(t, m.Verified)
	assert.InDelta(t, 4.5, m.Rating(), 0.001)

	mock.ExpectQuery(regexp.QuoteMeta("FROM mentors WHERE id = $1")).
		WithArgs("zz").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = store.GetMentor(context.Background(), "zz")
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestPostgresStore_AddRating(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("SET rating_sum = rating_sum + $2")).
		WithArgs("m1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.AddRating(context.Background(), "m1", 4))

	mock.ExpectExec(regexp.QuoteMeta("SET rating_sum = rating_sum + $2")).
		WithArgs("zz", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.AddRating(context.Background(), "zz", 4), ErrMentorNotFound)
}

func TestPostgresStore_DeleteTimeslot(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timeslots")).
		WithArgs("t1", "m1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.DeleteTimeslot(context.Background(), "m1", "t1"), ErrTimeslotNotFound)
}
