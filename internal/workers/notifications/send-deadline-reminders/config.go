// internal/workers/notifications/send-deadline-reminders/config.go
package senddeadlinereminders

import (
	"time"

	"scholarship-tracker/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
