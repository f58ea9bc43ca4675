// internal/workers/matching/persist-matches/handler.go
package persistmatches

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-tracker/internal/common/camunda"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
)

const (
	TaskType = "persist-matches"
)

// Persister replaces the matched part of a user's collection.
type Persister interface {
	PersistMatches(ctx context.Context, userID string, matches []models.Scholarship) ([]models.Scholarship, error)
}

type Handler struct {
	config    *Config
	persister Persister
	logger    logger.Logger
}

func NewHandler(config *Config, persister Persister, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		persister: persister,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, inputSchema, &input); err != nil {
		camunda.FailJob(client, job, err, h.logger)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		camunda.FailJob(client, job, err, h.logger)
		return
	}

	camunda.CompleteJob(client, job, output, h.logger)
}

// execute stores the matches. Entries the user already added survive the
// replacement, so the output counts both sides of the resulting collection.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.UserID == "" {
		return nil, apperrors.NewUnauthenticatedError("userId is required")
	}

	list, err := h.persister.PersistMatches(ctx, input.UserID, input.Scholarships)
	if err != nil {
		return nil, err
	}

	out := &Output{UserID: input.UserID, Persisted: true}
	for _, sc := range list {
		if sc.IsAdded() {
			out.AddedCount++
		} else {
			out.MatchedCount++
		}
	}
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
