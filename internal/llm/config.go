package llm

import (
	"os"
	"strconv"

	"github.com/alexanderramin/attune/internal/domain"
)

// TaskType identifies the kind of model task being performed.
type TaskType string

const (
	TaskNLI   TaskType = "nli"
	TaskEmbed TaskType = "embed"
)

// TaskConfig holds per-task model parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the model backend.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	EmbedModel string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// The backend is disabled by default; everything degrades to rules.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		EmbedModel: "nomic-embed-text",
		TimeoutMs:  3000,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			// The NLI gate sits on the response path: tight budget, no
			// retries, degrade to rules on expiry.
			TaskNLI:   {Temperature: 0.0, MaxTokens: 128, TimeoutMs: 1200},
			TaskEmbed: {TimeoutMs: 3000},
		},
	}
}

// LoadConfig reads model configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("ATTUNE_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ATTUNE_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	cfg.Endpoint = domain.CoalesceStr(
		os.Getenv("ATTUNE_LLM_ENDPOINT"),
		os.Getenv("OLLAMA_HOST"),
		cfg.Endpoint,
	)
	if v := os.Getenv("ATTUNE_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ATTUNE_LLM_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("ATTUNE_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("ATTUNE_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskNLI, "ATTUNE_LLM_NLI_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskEmbed, "ATTUNE_LLM_EMBED_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
