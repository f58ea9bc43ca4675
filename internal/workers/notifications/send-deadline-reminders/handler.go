// internal/workers/notifications/send-deadline-reminders/handler.go
package senddeadlinereminders

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-tracker/internal/common/camunda"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/notifications"
)

const (
	TaskType = "send-deadline-reminders"
)

type Runner interface {
	Run(ctx context.Context, now time.Time) (*notifications.Report, error)
}

type Handler struct {
	config   *Config
	reminder Runner
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, reminder Runner, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		reminder: reminder,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:      time.Now,
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
	now := h.now().UTC()
	if input != nil && input.RunAt != "" {
		t, err := time.Parse(time.RFC3339, input.RunAt)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("runAt", "runAt must be RFC 3339")
		}
		now = t.UTC()
	}

	report, err := h.reminder.Run(ctx, now)
	if err != nil {
		if ctx.Err() != nil {
			// a partial run is retried as a whole
			return nil, apperrors.NewExternalServiceError("reminders", err)
		}
		return nil, err
	}

	return &Output{
		Users:   report.Users,
		Sent:    report.Sent,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		RanAt:   now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
