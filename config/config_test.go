package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, 3, cfg.Orchestrator.ParallelAgents)
	assert.Equal(t, AggregationConsensus, cfg.Orchestrator.AggregationStrategy)
	assert.Equal(t, 5*time.Minute, cfg.AgentTimeout())
}

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  provider: anthropic
  name: claude-sonnet-4-0
agent:
  max_iterations: 5
orchestrator:
  parallel_agents: 6
  agent_timeout_seconds: 60
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-sonnet-4-0", cfg.Model.Name)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, 6, cfg.Orchestrator.ParallelAgents)
	assert.Equal(t, time.Minute, cfg.AgentTimeout())
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultSystemPrompt, cfg.Agent.SystemPrompt)
	assert.Equal(t, DefaultDecompositionPrompt, cfg.Orchestrator.DecompositionPrompt)
}

func TestLoad_NonexistentFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{
			"unknown provider",
			func(c *Config) { c.Model.Provider = "llamacpp" },
			"unsupported model provider",
		},
		{
			"non-positive iterations",
			func(c *Config) { c.Agent.MaxIterations = 0 },
			"max_iterations",
		},
		{
			"non-positive agents",
			func(c *Config) { c.Orchestrator.ParallelAgents = -1 },
			"parallel_agents",
		},
		{
			"non-positive timeout",
			func(c *Config) { c.Orchestrator.AgentTimeoutSeconds = 0 },
			"agent_timeout_seconds",
		},
		{
			"decomposition prompt missing task placeholder",
			func(c *Config) { c.Orchestrator.DecompositionPrompt = "split into {{.NumAgents}} parts" },
			"{{.Task}}",
		},
		{
			"synthesis prompt missing responses placeholder",
			func(c *Config) { c.Orchestrator.SynthesisPrompt = "combine {{.NumResponses}} responses" },
			"{{.Responses}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_NormalizesUnknownStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orchestrator.AggregationStrategy = "majority-vote"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, AggregationConsensus, cfg.Orchestrator.AggregationStrategy)
}
