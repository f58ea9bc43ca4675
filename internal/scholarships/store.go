// Package scholarships keeps each user's scholarship collection: AI matches
// and the subset the user has added to their dashboard.
package scholarships

import (
	"context"
	"errors"

	"scholarship-tracker/internal/models"
)

var (
	ErrNotFound        = errors.New("SCHOLARSHIP_NOT_FOUND")
	ErrVersionConflict = errors.New("VERSION_CONFLICT")
)

// Store persists one row per (user, scholarship). Implementations must make
// Upsert atomic per row so writes to different scholarships never interfere.
type Store interface {
	ProfileExists(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Scholarship, error)
	Get(ctx context.Context, userID, id string) (*models.Scholarship, error)
	// Upsert replaces the entry in place or appends it. expectedVersion > 0
	// makes the write conditional on the stored version.
	Upsert(ctx context.Context, userID string, s models.Scholarship, expectedVersion int64) (*models.Scholarship, error)
	// ReplaceMatched drops every "matched" entry and appends matches after
	// the remaining ones. Ids already present are left untouched.
	ReplaceMatched(ctx context.Context, userID string, matches []models.Scholarship) error
}

// ConflictError carries the versions of a failed conditional write.
type ConflictError struct {
	ID       string
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return "VERSION_CONFLICT: " + e.ID
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
