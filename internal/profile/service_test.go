package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedService(t *testing.T) (*Service, *MemoryStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := NewMemoryStore()
	return NewService(store, rdb, 10*time.Minute, logger.NewTestLogger(t)), store, mr
}

func TestService_Get_ReadThrough(t *testing.T) {
	svc, store, mr := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", models.UserProfile{ProfileText: "Degree Level: PhD", Gender: "Female"})
	require.NoError(t, err)
	readsAfterSave := store.Reads()

	p, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Degree Level: PhD", p.ProfileText)
	assert.Equal(t, readsAfterSave, store.Reads(), "second read is served from cache")
	assert.True(t, mr.Exists("profile:user-1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("profile:user-1"))
}

func TestService_Save_Invalidates(t *testing.T) {
	svc, _, _ := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", models.UserProfile{ProfileText: "old"})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "user-1")
	require.NoError(t, err)

	got, err := svc.Save(ctx, "user-1", models.UserProfile{ProfileText: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.ProfileText)

	again, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "new", again.ProfileText)
}

func TestService_Save_KeepsContactWhenOmitted(t *testing.T) {
	svc, _, _ := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", models.UserProfile{Email: "a@b.com", Phone: "+447700900123"})
	require.NoError(t, err)
	got, err := svc.Save(ctx, "user-1", models.UserProfile{ProfileText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, "+447700900123", got.Phone)

	contacts, err := svc.Contacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Contact{{UserID: "user-1", Email: "a@b.com", Phone: "+447700900123"}}, contacts)
}

func TestService_Errors(t *testing.T) {
	svc, _, _ := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProfileNotFound))

	_, err = svc.Get(ctx, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	_, err = svc.Save(ctx, "user-1", models.UserProfile{DateOfBirth: "31/12/1999"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))

	_, err = svc.Save(ctx, "user-1", models.UserProfile{Phone: "0770"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestService_Ensure(t *testing.T) {
	svc, _, _ := newCachedService(t)
	ctx := context.Background()

	require.NoError(t, svc.Ensure(ctx, "user-1"))
	require.NoError(t, svc.Ensure(ctx, "user-1"))

	p, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Empty(t, p.ProfileText)
}

func TestService_CacheErrorFallsBackToStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewMemoryStore()
	stored := models.UserProfile{UserID: "user-1", ProfileText: "p", UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.profiles["user-1"] = stored
	svc := NewService(store, db, time.Minute, logger.NewTestLogger(t))

	cachedData, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet("profile:user-1").SetErr(errors.New("redis down"))
	mock.ExpectSet("profile:user-1", cachedData, time.Minute).SetErr(errors.New("redis down"))

	p, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "p", p.ProfileText)
	assert.Equal(t, 1, store.Reads())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_NoCache(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, 0, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", models.UserProfile{ProfileText: "p"})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Reads())
}
