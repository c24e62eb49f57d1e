package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/multimind/logging"
	"github.com/hupe1980/multimind/model"
	"github.com/hupe1980/multimind/tool"
)

// ExhaustedMessage is returned when the iteration budget runs out and the
// model produced no text at all.
const ExhaustedMessage = "Maximum iterations reached without task completion."

// Options configures an Agent instance. Use functional options with New to
// override defaults.
type Options struct {
	// SystemPrompt seeds the conversation's system message.
	SystemPrompt string
	// MaxIterations bounds the number of model turns per Run.
	MaxIterations int
	// Tools is the capability set exposed to the model. Role-specific
	// subsets (planner, synthesizer) are built with Registry.Without.
	Tools *tool.Registry
	// Logger receives structured loop events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent drives one bounded tool-use conversation per Run call. Conversation
// state lives entirely inside Run; an Agent holds only immutable
// configuration and is safe for concurrent Runs.
type Agent struct {
	llm           model.Model
	systemPrompt  string
	maxIterations int
	tools         *tool.Registry
	logger        logging.Logger
}

// New creates an Agent with sensible defaults: 10 iterations, an empty tool
// registry and no logging.
func New(llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		SystemPrompt:  "You are a helpful AI assistant.",
		MaxIterations: 10,
		Tools:         tool.NewRegistry(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{
		llm:           llm,
		systemPrompt:  opts.SystemPrompt,
		maxIterations: opts.MaxIterations,
		tools:         opts.Tools,
		logger:        opts.Logger,
	}
}

// Run executes the tool-use loop for a single task and returns the
// accumulated transcript, assistant messages joined by blank lines.
//
// Each turn sends the full conversation plus the registry's schemas to the
// model. Tool calls are dispatched in the order the model issued them; a
// failing or unknown tool becomes an error-payload result message and never
// aborts the loop. Invoking the completion-signal tool ends the loop
// immediately, even if later calls in the same batch remain unprocessed.
// Only a failed model call is terminal; it propagates to the caller.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	conversation := []model.Message{
		model.SystemMessage(a.systemPrompt),
		model.UserMessage(task),
	}
	var transcript []string

	a.logger.Debug("agent.run.start", "max_iterations", a.maxIterations, "tools", a.tools.Len())

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		start := time.Now()
		resp, err := a.llm.Generate(ctx, model.Request{
			Messages: conversation,
			Tools:    a.tools.Definitions(),
		})
		logging.LogModelCall(a.logger, a.llm.Info().Name, time.Since(start), err)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		conversation = append(conversation, resp.Message())
		if resp.Content != "" {
			transcript = append(transcript, resp.Content)
		}

		// The model may think out loud without requesting tools; that does
		// not end the task.
		if !resp.HasToolCalls() {
			continue
		}

		for _, call := range resp.ToolCalls {
			result, completed := a.dispatch(ctx, call)
			conversation = append(conversation, result)
			if completed {
				a.logger.Info("agent.run.completed", "iterations", iteration+1)
				return strings.Join(transcript, "\n\n"), nil
			}
		}
	}

	a.logger.Warn("agent.run.exhausted", "max_iterations", a.maxIterations)
	if len(transcript) > 0 {
		return strings.Join(transcript, "\n\n"), nil
	}
	return ExhaustedMessage, nil
}

// dispatch resolves and invokes a single tool call, returning the tool result
// message and whether the call was the completion signal. A call to the
// completion tool only counts when the tool is actually registered; planner
// agents run without it and treat such a call as unknown.
func (a *Agent) dispatch(ctx context.Context, call model.ToolCall) (model.Message, bool) {
	t, ok := a.tools.Get(call.Name)
	if !ok {
		a.logger.Warn("tool.call.unknown", "tool", call.Name)
		return errorResult(call.ID, fmt.Sprintf("unknown tool: %s", call.Name)), false
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			a.logger.Warn("tool.call.bad_arguments", "tool", call.Name, "error", err.Error())
			return errorResult(call.ID, fmt.Sprintf("tool execution failed: invalid arguments: %v", err)), false
		}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	logging.LogToolCall(a.logger, call.Name, time.Since(start), err)
	if err != nil {
		return errorResult(call.ID, fmt.Sprintf("tool execution failed: %v", err)), false
	}

	return model.ToolResultMessage(call.ID, serializeResult(result)), call.Name == tool.CompleteToolName
}

// errorResult materializes a failure as a {"error": ...} tool result so the
// conversation continues with the failure visible to the model.
func errorResult(callID, message string) model.Message {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return model.ToolResultMessage(callID, string(payload))
}

func serializeResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(payload)
}
