package orchestrator

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// fallbackTemplates is the deterministic sub-task set used when the model's
// decomposition cannot be used. Content is a pure function of (task, count)
// so the system stays usable without the model's cooperation.
var fallbackTemplates = []string{
	"Research the core facts and background needed for: %s",
	"Analyze the problem in depth and work out a solution for: %s",
	"Explore alternative perspectives and approaches for: %s",
	"Verify assumptions and identify risks or errors in: %s",
}

// fallbackSubTasks renders exactly n sub-tasks from the fixed templates,
// cycling when n exceeds the template count so every agent index receives a
// sub-task.
func fallbackSubTasks(task string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf(fallbackTemplates[i%len(fallbackTemplates)], task)
	}
	return out
}

// parseSubTasks extracts an ordered list of sub-task strings from a planner
// reply. Models rarely return the bare JSON array they were asked for; the
// reply may wrap it in prose or a fenced code block, and array elements may
// be strings or objects carrying a task-like field. gjson tolerates all of
// these shapes once the array fragment is isolated.
func parseSubTasks(reply string) ([]string, error) {
	fragment := extractArray(reply)
	if fragment == "" {
		return nil, fmt.Errorf("no JSON array found in decomposition reply")
	}

	parsed := gjson.Parse(fragment)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("decomposition reply is not a JSON array")
	}

	var subtasks []string
	for _, elem := range parsed.Array() {
		text := elem.String()
		if elem.IsObject() {
			text = firstField(elem, "task", "subtask", "description", "title")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("decomposition reply contains an empty sub-task")
		}
		subtasks = append(subtasks, text)
	}
	if len(subtasks) == 0 {
		return nil, fmt.Errorf("decomposition reply contains no sub-tasks")
	}
	return subtasks, nil
}

// extractArray isolates the first top-level JSON array in text, tolerating
// markdown code fences around it.
func extractArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func firstField(elem gjson.Result, fields ...string) string {
	for _, f := range fields {
		if v := elem.Get(f); v.Exists() {
			return v.String()
		}
	}
	return ""
}
