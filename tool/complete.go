package tool

import (
	"context"
	"time"

	"github.com/hupe1980/multimind/internal/util"
)

// CompleteToolName is the designated completion-signal capability. When a
// model invokes it, the agent loop ends immediately. Planner agents are built
// without it so a planning call cannot terminate itself prematurely.
const CompleteToolName = "task_complete"

// NewCompleteTool returns the completion-signal tool. Its payload carries a
// status marker, the model's own summary, a completion message and an RFC3339
// timestamp; the agent loop treats the invocation itself as the signal.
func NewCompleteTool() Tool {
	return NewFunctionTool(
		CompleteToolName,
		"Signal that the task is complete. Call this exactly once, after the task is fully solved, with a short summary of what was accomplished.",
		util.ObjectSchema(map[string]any{
			"summary": util.StringProperty("A short summary of the completed work"),
		}, "summary"),
		func(_ context.Context, args map[string]any) (any, error) {
			summary, _ := args["summary"].(string)
			return map[string]any{
				"status":    "complete",
				"summary":   summary,
				"message":   "Task marked as complete.",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}, nil
		},
	)
}
