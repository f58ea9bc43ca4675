// internal/workers/documents/reconcile-uploads/config.go
package reconcileuploads

import (
	"time"

	"scholarship-tracker/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// OlderThan is the default age after which a pending or deleting row is stale.
	OlderThan time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:   config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		OlderThan: config.GetSeconds(cfg.Documents.PendingTTL),
	}
}
