package search

import (
	"context"

	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
)

// CollectionChangedMessage starts the index-scholarships process for a user.
const CollectionChangedMessage = "scholarship-collection-changed"

// Publisher correlates a message into the workflow engine.
type Publisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

// Reindexer keeps a user's documents in step with their stored collection.
// With a publisher the workflow does the indexing; without one, or when
// publishing fails, the collection is synced inline.
type Reindexer struct {
	search    *Service
	publisher Publisher
	log       logger.Logger
}

func NewReindexer(svc *Service, pub Publisher, log logger.Logger) *Reindexer {
	return &Reindexer{
		search:    svc,
		publisher: pub,
		log:       logger.Component(log, "reindexer"),
	}
}

// CollectionChanged is called with the full collection after every write.
// Failures are logged; the write itself has already succeeded.
func (r *Reindexer) CollectionChanged(ctx context.Context, userID string, list []models.Scholarship) {
	if r.publisher != nil {
		err := r.publisher.PublishMessage(ctx, CollectionChangedMessage, userID, map[string]interface{}{
			"userId": userID,
			"count":  len(list),
		})
		if err == nil {
			return
		}
		r.log.WithError(err).Warn("indexing message not published, syncing inline", map[string]interface{}{"userId": userID})
	}

	if _, err := r.search.Sync(ctx, userID, list); err != nil {
		r.log.WithError(err).Warn("search index out of date", map[string]interface{}{"userId": userID})
	}
}
