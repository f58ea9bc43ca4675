package genai

import (
	"context"

	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
)

// MatchFinder produces scholarship matches for a profile.
type MatchFinder interface {
	FindMatches(ctx context.Context, profile string) ([]models.Scholarship, error)
}

// MatchPersister stores generated matches in the user's collection.
type MatchPersister interface {
	PersistMatches(ctx context.Context, userID string, matches []models.Scholarship) ([]models.Scholarship, error)
}

// MatchResult carries the generated matches even when storing them failed.
type MatchResult struct {
	Scholarships []models.Scholarship `json:"scholarships"`
	Persisted    bool                 `json:"persisted"`
	PersistError string               `json:"persist_error,omitempty"`
}

// MatchPipeline runs generation and persistence as two separate steps.
type MatchPipeline struct {
	finder    MatchFinder
	persister MatchPersister
	log       logger.Logger
}

func NewMatchPipeline(finder MatchFinder, persister MatchPersister, log logger.Logger) *MatchPipeline {
	return &MatchPipeline{
		finder:    finder,
		persister: persister,
		log:       logger.Component(log, "match-pipeline"),
	}
}

// Run fails only when generation fails. A persistence failure is reported in
// the result so the caller can retry storing the same matches.
func (p *MatchPipeline) Run(ctx context.Context, userID, profile string) (*MatchResult, error) {
	matches, err := p.finder.FindMatches(ctx, profile)
	if err != nil {
		return nil, err
	}

	res := &MatchResult{Scholarships: matches}
	if _, err := p.persister.PersistMatches(ctx, userID, matches); err != nil {
		p.log.WithError(err).Warn("generated matches not persisted", map[string]interface{}{
			"userId": userID,
			"count":  len(matches),
		})
		res.PersistError = err.Error()
		return res, nil
	}
	res.Persisted = true
	return res, nil
}
