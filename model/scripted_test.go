package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedModel_ReplaysTurns(t *testing.T) {
	m := NewScriptedModel(
		TextTurn("first"),
		TextTurn("second"),
	)

	resp, err := m.Generate(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	// The script repeats its final turn once exhausted.
	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	assert.Equal(t, 3, m.CallCount())
}

func TestScriptedModel_ToolCallTurn(t *testing.T) {
	m := NewScriptedModel(ToolCallTurn("thinking", "calculator", map[string]any{"expression": "1+1"}))

	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	require.True(t, resp.HasToolCalls())

	tc := resp.ToolCalls[0]
	assert.Equal(t, "calculator", tc.Name)
	assert.JSONEq(t, `{"expression":"1+1"}`, tc.Arguments)
	assert.NotEmpty(t, tc.ID)
}

func TestScriptedModel_ErrorTurn(t *testing.T) {
	boom := errors.New("boom")
	m := NewScriptedModel(ErrorTurn(boom))

	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestScriptedModel_EmptyScript(t *testing.T) {
	m := NewScriptedModel()
	_, err := m.Generate(context.Background(), Request{})

	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
}

func TestScriptedModel_RecordsRequests(t *testing.T) {
	m := NewScriptedModel(TextTurn("ok"))

	_, err := m.Generate(context.Background(), Request{Messages: []Message{
		SystemMessage("sys"),
		UserMessage("question"),
	}})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "question", reqs[0].LastUserContent())
}

func TestRequest_LastUserContent(t *testing.T) {
	req := Request{Messages: []Message{
		SystemMessage("sys"),
		UserMessage("first"),
		AssistantMessage("reply"),
		UserMessage("second"),
	}}
	assert.Equal(t, "second", req.LastUserContent())

	assert.Empty(t, Request{}.LastUserContent())
}

func TestResponse_Message(t *testing.T) {
	resp := Response{
		Content:   "text",
		ToolCalls: []ToolCall{{ID: "call_1", Name: "t", Arguments: "{}"}},
	}

	msg := resp.Message()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "text", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
}

func TestToolResultMessage(t *testing.T) {
	msg := ToolResultMessage("call_1", `{"ok":true}`)
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "call_1", msg.ToolCallID)
	assert.Equal(t, `{"ok":true}`, msg.Content)
}
