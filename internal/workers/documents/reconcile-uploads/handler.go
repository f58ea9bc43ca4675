// internal/workers/documents/reconcile-uploads/handler.go
package reconcileuploads

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-tracker/internal/common/camunda"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/documents"
)

const (
	TaskType = "reconcile-uploads"
)

type Reconciler interface {
	Reconcile(ctx context.Context, olderThan time.Duration) (*documents.ReconcileReport, error)
}

type Handler struct {
	config     *Config
	reconciler Reconciler
	logger     logger.Logger
}

func NewHandler(config *Config, reconciler Reconciler, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		reconciler: reconciler,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	olderThan := h.config.OlderThan
	if input != nil && input.OlderThanSeconds > 0 {
		olderThan = time.Duration(input.OlderThanSeconds) * time.Second
	}

	report, err := h.reconciler.Reconcile(ctx, olderThan)
	if err != nil {
		return nil, err
	}
	if report.Failed > 0 {
		h.logger.Warn("some stale uploads were not cleaned up", map[string]interface{}{
			"failed": report.Failed,
		})
	}

	return &Output{
		PendingRemoved:  report.PendingRemoved,
		DeletingRemoved: report.DeletingRemoved,
		Failed:          report.Failed,
		Clean:           report.Failed == 0,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
