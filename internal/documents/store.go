// Package documents manages the files users upload into the fixed document
// categories. Blobs live in object storage; metadata rows track a
// pending -> confirmed -> deleting lifecycle so the two never drift apart.
package documents

import (
	"context"
	"errors"
	"time"

	"scholarship-tracker/internal/models"
)

var ErrFileNotFound = errors.New("FILE_NOT_FOUND")

// MetadataStore persists FileRef rows.
type MetadataStore interface {
	InsertPending(ctx context.Context, f models.FileRef) error
	SetState(ctx context.Context, userID, id, state string) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, userID, id string) (*models.FileRef, error)
	ListConfirmed(ctx context.Context, userID string) ([]models.FileRef, error)
	// ListStale returns rows in one of states last touched before cutoff.
	ListStale(ctx context.Context, states []string, cutoff time.Time) ([]models.FileRef, error)
}
