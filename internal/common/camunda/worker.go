// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"scholarship-tracker/internal/common/config"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc is the job callback every worker package exposes as Handle.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Instrument wraps h with the job duration histogram.
func Instrument(taskType string, h HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		h(client, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}
}

// Registry tracks the job workers opened by the manager so they can be closed together.
type Registry struct {
	client  zbc.Client
	log     logger.Logger
	workers map[string]worker.JobWorker
}

func NewRegistry(client zbc.Client, log logger.Logger) *Registry {
	return &Registry{
		client:  client,
		log:     log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in config.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, h HandlerFunc) {
	if !wcfg.Enabled {
		r.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	r.workers[taskType] = r.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, h))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	r.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Running lists the started task types.
func (r *Registry) Running() []string {
	out := make([]string, 0, len(r.workers))
	for t := range r.workers {
		out = append(out, t)
	}
	return out
}

// Stop closes every worker; in-flight jobs finish first.
func (r *Registry) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		for taskType, w := range r.workers {
			w.Close()
			w.AwaitClose()
			r.log.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.log.Warn("worker shutdown timed out", map[string]interface{}{"error": ctx.Err()})
	}
}
