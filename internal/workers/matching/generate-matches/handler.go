// internal/workers/matching/generate-matches/handler.go
package generatematches

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-tracker/internal/common/camunda"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/genai"
)

const (
	TaskType = "generate-matches"
)

// MatchRunner generates matches for a profile and stores them.
type MatchRunner interface {
	Run(ctx context.Context, userID, profile string) (*genai.MatchResult, error)
}

type Handler struct {
	config  *Config
	matches MatchRunner
	logger  logger.Logger
}

func NewHandler(config *Config, matches MatchRunner, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		matches: matches,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.UserID == "" {
		return nil, apperrors.NewUnauthenticatedError("userId is required")
	}

	res, err := h.matches.Run(ctx, input.UserID, input.Profile)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && !apperrors.HasCode(err, apperrors.ErrCodeGenerationTimeout) {
			return nil, apperrors.NewGenerationTimeoutError(genai.KindMatches, err)
		}
		return nil, err
	}

	if !res.Persisted {
		h.logger.Warn("matches generated but not stored", map[string]interface{}{
			"userId": input.UserID,
			"error":  res.PersistError,
		})
	}
	return &Output{
		UserID:           input.UserID,
		Scholarships:     res.Scholarships,
		ScholarshipCount: len(res.Scholarships),
		Persisted:        res.Persisted,
		PersistError:     res.PersistError,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
