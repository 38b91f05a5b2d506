package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")

	cfg := LoadConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
	assert.Equal(t, 1200, cfg.TaskTimeout(TaskNLI))
	assert.Equal(t, 3000, cfg.TaskTimeout(TaskEmbed))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ATTUNE_LLM_ENABLED", "true")
	t.Setenv("ATTUNE_LLM_ENDPOINT", "http://ollama:11434")
	t.Setenv("ATTUNE_LLM_MODEL", "qwen2.5")
	t.Setenv("ATTUNE_LLM_EMBED_MODEL", "mxbai-embed-large")
	t.Setenv("ATTUNE_LLM_NLI_TIMEOUT_MS", "800")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://ollama:11434", cfg.Endpoint)
	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, "mxbai-embed-large", cfg.EmbedModel)
	assert.Equal(t, 800, cfg.TaskTimeout(TaskNLI))
}

func TestLoadConfig_EndpointFallsBackToOllamaHost(t *testing.T) {
	t.Setenv("ATTUNE_LLM_ENDPOINT", "")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	cfg := LoadConfig()
	assert.Equal(t, "http://gpu-box:11434", cfg.Endpoint)

	t.Setenv("ATTUNE_LLM_ENDPOINT", "http://direct:11434")
	cfg = LoadConfig()
	assert.Equal(t, "http://direct:11434", cfg.Endpoint)
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("ATTUNE_LLM_TIMEOUT_MS", "not-a-number")
	t.Setenv("ATTUNE_LLM_NLI_TIMEOUT_MS", "-5")

	cfg := LoadConfig()

	assert.Equal(t, 3000, cfg.TimeoutMs)
	assert.Equal(t, 1200, cfg.TaskTimeout(TaskNLI))
}
