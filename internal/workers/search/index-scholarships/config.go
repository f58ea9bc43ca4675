// internal/workers/search/index-scholarships/config.go
package indexscholarships

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
