// Package config handles configuration loading for multimind: defaults, an
// optional YAML file and validation. API keys are read from the environment
// by the model adapters, never from the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AggregationConsensus is the only defined aggregation strategy. Unrecognized
// strategy names fall back to it.
const AggregationConsensus = "consensus"

// DefaultDecompositionPrompt instructs the planner to split the user task
// into exactly NumAgents sub-tasks returned as a JSON array of strings.
const DefaultDecompositionPrompt = `Break the following task into exactly {{.NumAgents}} independent sub-tasks that can be worked on in parallel. Each sub-task should approach the task from a different angle.

Task: {{.Task}}

Return ONLY a JSON array of {{.NumAgents}} strings, one per sub-task, with no other text.`

// DefaultSynthesisPrompt asks the synthesizer to combine the successful agent
// responses into one final answer.
const DefaultSynthesisPrompt = `You are given {{.NumResponses}} responses from independent agents that worked on the same task from different angles. Combine them into a single, coherent final answer. Resolve contradictions, remove duplication and keep the strongest points of each response.

{{.Responses}}
Provide the final consolidated answer directly.`

// DefaultSystemPrompt seeds every worker agent's conversation.
const DefaultSystemPrompt = `You are a capable AI agent. Work on the given task step by step, using the available tools when they help. When the task is fully solved, call the task_complete tool with a short summary.`

// Config is the immutable configuration record read once at startup and
// shared read-only by all agents and the orchestrator.
type Config struct {
	Model        ModelConfig        `yaml:"model"`
	Agent        AgentConfig        `yaml:"agent"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Log          LogConfig          `yaml:"log"`
}

// ModelConfig selects and addresses the language model provider.
type ModelConfig struct {
	Provider string `yaml:"provider"` // "openai" or "anthropic"
	Name     string `yaml:"name"`     // provider model identifier
	Endpoint string `yaml:"endpoint"` // optional base URL override (openai only)
}

// AgentConfig controls the per-agent tool-use loop.
type AgentConfig struct {
	SystemPrompt  string `yaml:"system_prompt"`
	MaxIterations int    `yaml:"max_iterations"`
	WorkDir       string `yaml:"work_dir"` // root for the file tools
}

// OrchestratorConfig controls decomposition, dispatch and aggregation.
type OrchestratorConfig struct {
	ParallelAgents      int    `yaml:"parallel_agents"`
	AgentTimeoutSeconds int    `yaml:"agent_timeout_seconds"`
	AggregationStrategy string `yaml:"aggregation_strategy"`
	DecompositionPrompt string `yaml:"decomposition_prompt"`
	SynthesisPrompt     string `yaml:"synthesis_prompt"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: "openai",
			Name:     "gpt-4o-mini",
		},
		Agent: AgentConfig{
			SystemPrompt:  DefaultSystemPrompt,
			MaxIterations: 10,
			WorkDir:       ".",
		},
		Orchestrator: OrchestratorConfig{
			ParallelAgents:      3,
			AgentTimeoutSeconds: 300,
			AggregationStrategy: AggregationConsensus,
			DecompositionPrompt: DefaultDecompositionPrompt,
			SynthesisPrompt:     DefaultSynthesisPrompt,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. A missing path returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the system relies on. An
// unrecognized aggregation strategy is not an error; it is normalized to
// consensus, the only defined behavior.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported model provider %q", c.Model.Provider)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Orchestrator.ParallelAgents <= 0 {
		return fmt.Errorf("orchestrator.parallel_agents must be positive, got %d", c.Orchestrator.ParallelAgents)
	}
	if c.Orchestrator.AgentTimeoutSeconds <= 0 {
		return fmt.Errorf("orchestrator.agent_timeout_seconds must be positive, got %d", c.Orchestrator.AgentTimeoutSeconds)
	}

	for _, placeholder := range []string{"{{.Task}}", "{{.NumAgents}}"} {
		if !strings.Contains(c.Orchestrator.DecompositionPrompt, placeholder) {
			return fmt.Errorf("orchestrator.decomposition_prompt must contain %s", placeholder)
		}
	}
	for _, placeholder := range []string{"{{.NumResponses}}", "{{.Responses}}"} {
		if !strings.Contains(c.Orchestrator.SynthesisPrompt, placeholder) {
			return fmt.Errorf("orchestrator.synthesis_prompt must contain %s", placeholder)
		}
	}

	if c.Orchestrator.AggregationStrategy != AggregationConsensus {
		c.Orchestrator.AggregationStrategy = AggregationConsensus
	}
	return nil
}

// AgentTimeout returns the configured per-agent timeout as a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Orchestrator.AgentTimeoutSeconds) * time.Second
}
