package model

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Turn is one scripted exchange: either a canned Response or an error.
type Turn struct {
	Response Response
	Err      error
}

// TextTurn scripts an assistant reply containing only text.
func TextTurn(text string) Turn {
	return Turn{Response: Response{Content: text}}
}

// ToolCallTurn scripts an assistant reply that invokes a single tool with the
// given arguments. Text may be empty; providers emit both shapes. The call ID
// is generated so tool results correlate the way real providers require.
func ToolCallTurn(text, tool string, args map[string]any) Turn {
	raw, _ := json.Marshal(args)
	return Turn{Response: Response{
		Content: text,
		ToolCalls: []ToolCall{{
			ID:        "call_" + uuid.NewString()[:8],
			Name:      tool,
			Arguments: string(raw),
		}},
	}}
}

// ErrorTurn scripts a failed model call.
func ErrorTurn(err error) Turn {
	return Turn{Err: err}
}

// ScriptedModel is an in-memory Model that replays a fixed sequence of turns.
// Once the script is exhausted the final turn repeats, which keeps loop tests
// short ("the model always replies X"). All requests are recorded for
// assertions on prompt construction. Safe for concurrent use.
type ScriptedModel struct {
	mu       sync.Mutex
	turns    []Turn
	requests []Request
}

// NewScriptedModel builds a ScriptedModel from turns. At least one turn is
// required; Generate fails on an empty script.
func NewScriptedModel(turns ...Turn) *ScriptedModel {
	return &ScriptedModel{turns: turns}
}

// Generate implements Model by replaying the script.
func (m *ScriptedModel) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	idx := len(m.requests) - 1
	if idx >= len(m.turns) {
		idx = len(m.turns) - 1
	}
	if idx < 0 {
		return nil, &ScriptError{Calls: len(m.requests)}
	}

	turn := m.turns[idx]
	if turn.Err != nil {
		return nil, turn.Err
	}
	resp := turn.Response
	return &resp, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "scripted", SupportsTools: true}
}

// CallCount returns how many Generate calls the model has observed.
func (m *ScriptedModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every recorded request in call order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// ScriptError signals a Generate call against an empty script.
type ScriptError struct {
	Calls int
}

func (e *ScriptError) Error() string {
	return "scripted model has no turns to replay"
}
