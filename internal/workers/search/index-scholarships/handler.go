// internal/workers/search/index-scholarships/handler.go
package indexscholarships

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-tracker/internal/common/camunda"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/internal/search"
)

const (
	TaskType = "index-scholarships"
)

type Source interface {
	List(ctx context.Context, userID string) ([]models.Scholarship, error)
}

type Indexer interface {
	Sync(ctx context.Context, userID string, list []models.Scholarship) (*search.SyncResult, error)
}

type Handler struct {
	config  *Config
	source  Source
	indexer Indexer
	logger  logger.Logger
}

func NewHandler(config *Config, source Source, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		source:  source,
		indexer: indexer,
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

	list, err := h.source.List(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	res, err := h.indexer.Sync(ctx, input.UserID, list)
	if err != nil {
		return nil, err
	}
	return &Output{UserID: input.UserID, Indexed: res.Indexed, Removed: res.Removed}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
