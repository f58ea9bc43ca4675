package camunda

import (
	"context"
	"encoding/json"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const commandTimeout = 10 * time.Second

// DecodeVariables validates the job variables against schema and decodes them into dst.
func DecodeVariables(job entities.Job, schema *validation.Schema, dst interface{}) error {
	raw := []byte(job.Variables)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if schema != nil {
		result, err := schema.ValidateBytes(raw)
		if err != nil {
			return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Malformed job variables", err.Error())
		}
		if err := result.ToError(); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Malformed job variables", err.Error())
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
}

// FailJob fails the job for a retry when err has a retry budget and throws
// it as a BPMN error otherwise.
func FailJob(client worker.JobClient, job entities.Job, err error, log logger.Logger) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(stdErr.Code)).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	apperrors.NewJobErrorHandler(log).HandleJobError(ctx, client, job, stdErr)
}
