package model

import (
	"context"
)

// Role identifies the author of a conversation message.
type Role string

// Conversation roles understood by all providers.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded argument object
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one entry in the ordered conversation sent to a model. Assistant
// messages may carry tool calls; tool messages carry the result for exactly
// one call, correlated by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage builds a system role message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage builds a user role message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds an assistant message from a provider response.
func AssistantMessage(text string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: toolCalls}
}

// ToolResultMessage builds a tool role message carrying the serialized result
// for the tool call identified by id.
func ToolResultMessage(id, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: id}
}

// Request captures the normalized model input produced by the agent loop.
type Request struct {
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// LastUserContent returns the content of the most recent user message, or ""
// when the request carries none. Scripted models key canned replies off it.
func (r Request) LastUserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Response is the single assistant turn returned by a model. Content may be
// empty when the model only issues tool calls, ToolCalls may be empty when it
// only produces text, and both may be present simultaneously.
type Response struct {
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls reports whether the response requests any tool invocation.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Message converts the response into the assistant message appended to the
// conversation before the next turn.
func (r *Response) Message() Message {
	return AssistantMessage(r.Content, r.ToolCalls...)
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation. Generate must
// be safe for concurrent use; parallel agents share one Model instance.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// GenerateFunc adapts a plain function to the Model interface. Handy in tests
// that branch on request content.
type GenerateFunc func(ctx context.Context, req Request) (*Response, error)

// Generate implements Model.
func (f GenerateFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Info implements Model.
func (f GenerateFunc) Info() Info {
	return Info{Name: "func", Provider: "func", SupportsTools: true}
}
