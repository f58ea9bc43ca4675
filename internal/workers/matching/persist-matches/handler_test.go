package persistmatches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/internal/scholarships"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

type failingPersister struct{ err error }

func (f failingPersister) PersistMatches(ctx context.Context, userID string, matches []models.Scholarship) ([]models.Scholarship, error) {
	return nil, f.err
}

// ==========================
// Execute
// ==========================

func TestExecute_KeepsAddedEntries(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	store := scholarships.NewMemoryStore()
	store.AddProfile("user-001")
	svc := scholarships.NewService(store, nil, log)
	_, err := svc.AddOrPromote(ctx, "user-001", models.Scholarship{ID: "kept", Title: "Fulbright"})
	require.NoError(t, err)

	h := NewHandler(createTestConfig(), svc, log)
	out, err := h.Execute(ctx, &Input{
		UserID: "user-001",
		Scholarships: []models.Scholarship{
			{ID: "m1", Title: "DAAD"},
			{ID: "m2", Title: "Erasmus"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, &Output{UserID: "user-001", MatchedCount: 2, AddedCount: 1, Persisted: true}, out)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		persister Persister
		wantKind  apperrors.Kind
	}{
		{
			name:      "missing user",
			input:     &Input{},
			persister: failingPersister{},
			wantKind:  apperrors.KindUnauthenticated,
		},
		{
			name:      "store failure",
			input:     &Input{UserID: "user-001"},
			persister: failingPersister{err: apperrors.NewDatabaseError("replace", errors.New("conn reset"))},
			wantKind:  apperrors.KindUpstreamFailure,
		},
		{
			name:      "unknown profile",
			input:     &Input{UserID: "ghost"},
			persister: scholarships.NewService(scholarships.NewMemoryStore(), nil, logger.NewNoOpLogger()),
			wantKind:  apperrors.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), tt.persister, logger.NewTestLogger(t))
			out, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
		})
	}
}

func TestInputSchema_RejectsMatchWithoutID(t *testing.T) {
	res, err := inputSchema.ValidateBytes([]byte(`{"userId":"u1","scholarships":[{"title":"no id"}]}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = inputSchema.ValidateBytes([]byte(`{"userId":"u1","scholarships":[]}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
