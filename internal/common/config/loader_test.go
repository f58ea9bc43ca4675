package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
database:
  postgres:
    host: db
    database: scholarships
    user: tracker
  redis:
    address: redis:6379
storage:
  minio:
    endpoint: minio:9000
workers:
  generate-matches:
    enabled: true
    timeout: 120000
`

const authYAML = `
auth:
  jwt:
    secret: ${TRACKER_TEST_SECRET}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("TRACKER_TEST_SECRET", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+authYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWT.Secret)
	assert.Equal(t, "scholarship-tracker", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "scholarships", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "user-documents", cfg.Storage.Minio.Bucket)
	assert.Equal(t, int64(10<<20), cfg.Documents.MaxFileSize)
	assert.Equal(t, 900, cfg.Documents.PendingTTL)
	assert.Equal(t, "admin", cfg.Auth.AdminRole)
	assert.Equal(t, 10, cfg.APIs.RateLimit.PerMinute)
	assert.Equal(t, "json", cfg.Logging.Format)

	w := cfg.Workers["generate-matches"]
	assert.Equal(t, 120000, w.Timeout)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadFromFile(writeConfig(t, minimalYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt.secret")
	})

	t.Run("camunda enabled without broker", func(t *testing.T) {
		t.Setenv("TRACKER_TEST_SECRET", "s3cret")
		_, err := LoadFromFile(writeConfig(t, minimalYAML+authYAML+"camunda:\n  enabled: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker_address")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"persist-matches": {Enabled: false, MaxJobsActive: 1, Timeout: 1000},
	}}

	assert.False(t, GetWorkerConfig(cfg, "persist-matches").Enabled)
	assert.False(t, IsWorkerEnabled(cfg, "persist-matches"))

	fallback := GetWorkerConfig(cfg, "reconcile-uploads")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "reconcile-uploads"))
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, 2*time.Minute, GetSeconds(120))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}
