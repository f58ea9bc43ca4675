package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-tracker/internal/common/config"
)

// ==========================
// Postgres
// ==========================

func TestPostgresClient_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}

	t.Run("applies schema files", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, client.Migrate(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports the failing file", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnError(errors.New("permission denied"))
		err := client.Migrate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "001_init.sql")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewPostgres_Pool(t *testing.T) {
	pg, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "d", User: "u", SSLMode: "disable",
		MaxConnections: 7, MaxIdle: 2,
	})
	require.NoError(t, err)
	defer pg.Close()
	assert.Equal(t, 7, pg.DB.Stats().MaxOpenConnections)
}

// ==========================
// Redis
// ==========================

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rdb.Ping(context.Background()))
}

// ==========================
// Elasticsearch
// ==========================

type fakeES struct {
	mu         sync.Mutex
	indexExist bool
	created    string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if f.indexExist {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.created = string(body)
		f.indexExist = true
		w.Write([]byte(`{"acknowledged":true}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}, Index: "scholarships"})
	require.NoError(t, err)
	require.NoError(t, es.Ping())

	mapping := `{"mappings":{"properties":{"id":{"type":"keyword"}}}}`
	require.NoError(t, es.EnsureIndex(context.Background(), mapping))
	assert.JSONEq(t, mapping, fake.created)

	fake.created = ""
	require.NoError(t, es.EnsureIndex(context.Background(), mapping))
	assert.Empty(t, fake.created, "existing index is left alone")
}
