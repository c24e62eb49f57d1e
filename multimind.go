// Package multimind provides a high-level façade over the agent loop and the
// orchestration engine. Most applications interact with this package by:
//  1. Loading a config.Config (file + defaults)
//  2. Creating an Orchestrator via New() (optionally overriding the model,
//     tool registry or logger)
//  3. Calling Orchestrate with the user task, polling Progress for display
//
// The façade only wires components together; the behavior lives in the
// agent, orchestrator, tool and model packages.
package multimind

import (
	"fmt"

	"github.com/hupe1980/multimind/agent"
	"github.com/hupe1980/multimind/config"
	"github.com/hupe1980/multimind/logging"
	"github.com/hupe1980/multimind/model"
	"github.com/hupe1980/multimind/model/anthropic"
	"github.com/hupe1980/multimind/model/openai"
	"github.com/hupe1980/multimind/orchestrator"
	"github.com/hupe1980/multimind/tool"
)

// Options overrides the components New derives from configuration.
type Options struct {
	// Model replaces the provider selected by cfg.Model.
	Model model.Model
	// Tools replaces the default registry.
	Tools *tool.Registry
	// Logger defaults to a slog text logger built from cfg.Log.
	Logger logging.Logger
}

// DefaultTools builds the standard capability set: calculator, file access
// rooted at workDir, web search and the completion signal.
func DefaultTools(workDir string) *tool.Registry {
	return tool.NewRegistry(
		tool.NewCalculatorTool(),
		tool.NewReadFileTool(workDir),
		tool.NewWriteFileTool(workDir),
		tool.NewListFilesTool(workDir),
		tool.NewSearchTool(),
		tool.NewCompleteTool(),
	)
}

// NewModel selects the language model provider from configuration. API keys
// are taken from the environment by the provider SDKs.
func NewModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.BaseURL = cfg.Model.Endpoint
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
		}), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Model.Provider)
	}
}

// New wires a ready-to-use Orchestrator from configuration.
func New(cfg *config.Config, optFns ...func(o *Options)) (*orchestrator.Orchestrator, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
	if opts.Tools == nil {
		opts.Tools = DefaultTools(cfg.Agent.WorkDir)
	}
	if opts.Model == nil {
		llm, err := NewModel(cfg)
		if err != nil {
			return nil, err
		}
		opts.Model = llm
	}

	return orchestrator.New(cfg, opts.Model, opts.Tools, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
	}), nil
}

// NewAgent wires a single stand-alone agent with the full default tool set,
// for callers that want the tool-use loop without orchestration.
func NewAgent(cfg *config.Config, optFns ...func(o *Options)) (*agent.Agent, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
	if opts.Tools == nil {
		opts.Tools = DefaultTools(cfg.Agent.WorkDir)
	}
	if opts.Model == nil {
		llm, err := NewModel(cfg)
		if err != nil {
			return nil, err
		}
		opts.Model = llm
	}

	return agent.New(opts.Model, func(a *agent.Options) {
		a.SystemPrompt = cfg.Agent.SystemPrompt
		a.MaxIterations = cfg.Agent.MaxIterations
		a.Tools = opts.Tools
		a.Logger = opts.Logger
	}), nil
}
