// internal/workers/matching/generate-matches/config.go
package generatematches

import (
	"time"

	"scholarship-tracker/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig reads the worker timeout. Generation calls are slow, so the
// configured value is raised to at least the LLM timeout.
func LoadConfig(cfg *config.Config) *Config {
	timeout := config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)
	if llm := config.GetDuration(cfg.APIs.OpenAI.Timeout); llm > timeout {
		timeout = llm
	}
	return &Config{Timeout: timeout}
}
