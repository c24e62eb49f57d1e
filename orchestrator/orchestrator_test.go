package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/multimind/config"
	"github.com/hupe1980/multimind/model"
	"github.com/hupe1980/multimind/tool"
)

func testConfig(agents int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Orchestrator.ParallelAgents = agents
	cfg.Orchestrator.AgentTimeoutSeconds = 30
	// A single model turn per agent keeps scripted runs to one call each.
	cfg.Agent.MaxIterations = 1
	return cfg
}

func testRegistry() *tool.Registry {
	return tool.NewRegistry(tool.NewCompleteTool())
}

// scriptedOrchestration branches on the prompt of each model call so it can
// serve the planner, the workers and the synthesizer of one run, regardless
// of the order concurrent workers arrive in.
func scriptedOrchestration(decomposition string, workers map[string]string, synthesis func() (string, error), capture *capturedPrompts) model.GenerateFunc {
	return func(_ context.Context, req model.Request) (*model.Response, error) {
		prompt := req.LastUserContent()
		switch {
		case strings.HasPrefix(prompt, "Break the following task"):
			return &model.Response{Content: decomposition}, nil
		case strings.HasPrefix(prompt, "You are given"):
			if capture != nil {
				capture.record(prompt)
			}
			text, err := synthesis()
			if err != nil {
				return nil, err
			}
			return &model.Response{Content: text}, nil
		default:
			reply, ok := workers[prompt]
			if !ok {
				return nil, errors.New("agent failure: " + prompt)
			}
			return &model.Response{Content: reply}, nil
		}
	}
}

type capturedPrompts struct {
	mu      sync.Mutex
	prompts []string
}

func (c *capturedPrompts) record(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
}

func (c *capturedPrompts) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

func TestOrchestrate_SynthesizesMultipleSuccesses(t *testing.T) {
	capture := &capturedPrompts{}
	llm := scriptedOrchestration(
		`["SUB1","SUB2","SUB3"]`,
		map[string]string{"SUB1": "R1", "SUB2": "R2", "SUB3": "R3"},
		func() (string, error) { return "Synth", nil },
		capture,
	)

	o := New(testConfig(3), llm, testRegistry())
	answer, err := o.Orchestrate(context.Background(), "big question")
	require.NoError(t, err)
	assert.Equal(t, "Synth", answer)

	prompts := capture.all()
	require.Len(t, prompts, 1)
	// Responses appear under labeled headings in ascending index order.
	assert.Contains(t, prompts[0],
		"=== AGENT 1 RESPONSE ===\nR1\n\n=== AGENT 2 RESPONSE ===\nR2\n\n=== AGENT 3 RESPONSE ===\nR3\n\n")
	assert.Contains(t, prompts[0], "You are given 3 responses")

	for i, status := range o.Progress().Snapshot() {
		assert.Equal(t, StateCompleted, status.State, "agent %d", i)
	}
}

func TestOrchestrate_SingleSuccessReturnedVerbatim(t *testing.T) {
	capture := &capturedPrompts{}
	llm := scriptedOrchestration(
		`["SUB1","SUB2","SUB3"]`,
		map[string]string{"SUB2": "only me"},
		func() (string, error) { return "should not be called", nil },
		capture,
	)

	o := New(testConfig(3), llm, testRegistry())
	answer, err := o.Orchestrate(context.Background(), "big question")
	require.NoError(t, err)

	assert.Equal(t, "only me", answer)
	assert.Empty(t, capture.all(), "synthesis must be skipped for a single success")
}

func TestOrchestrate_AllFailed(t *testing.T) {
	llm := model.GenerateFunc(func(_ context.Context, _ model.Request) (*model.Response, error) {
		return nil, errors.New("provider down")
	})

	o := New(testConfig(3), llm, testRegistry())
	answer, err := o.Orchestrate(context.Background(), "big question")
	require.NoError(t, err)
	assert.Equal(t, AllFailedMessage, answer)

	snapshot := o.Progress().Snapshot()
	require.Len(t, snapshot, 3)
	for i, status := range snapshot {
		assert.Equal(t, StateFailed, status.State, "agent %d", i)
	}
}

func TestOrchestrate_SynthesisFailureFallsBackToConcat(t *testing.T) {
	llm := scriptedOrchestration(
		`["SUB1","SUB2"]`,
		map[string]string{"SUB1": "R1", "SUB2": "R2"},
		func() (string, error) { return "", errors.New("synthesis broke") },
		nil,
	)

	o := New(testConfig(2), llm, testRegistry())
	answer, err := o.Orchestrate(context.Background(), "big question")
	require.NoError(t, err)

	assert.Equal(t, "=== Agent 1 Response ===\nR1\n\n=== Agent 2 Response ===\nR2", answer)
}

func TestOrchestrate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := model.NewScriptedModel(model.TextTurn("unused"))
	o := New(testConfig(2), llm, testRegistry())

	_, err := o.Orchestrate(ctx, "big question")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatch_OneResultPerIndex(t *testing.T) {
	llm := model.GenerateFunc(func(_ context.Context, req model.Request) (*model.Response, error) {
		return &model.Response{Content: "answer to " + req.LastUserContent()}, nil
	})

	o := New(testConfig(4), llm, testRegistry())
	subtasks := []string{"a", "b", "c", "d"}

	results := o.dispatch(context.Background(), subtasks)
	require.Len(t, results, 4)

	seen := make(map[int]bool)
	for _, res := range results {
		assert.False(t, seen[res.Index], "duplicate index %d", res.Index)
		seen[res.Index] = true
		assert.Equal(t, OutcomeSuccess, res.Outcome)
		assert.Equal(t, "answer to "+subtasks[res.Index], res.Response)
	}
	for i := range subtasks {
		assert.True(t, seen[i], "missing index %d", i)
	}
}

func TestRunAgent_ErrorOutcome(t *testing.T) {
	llm := model.NewScriptedModel(model.ErrorTurn(errors.New("boom")))

	o := New(testConfig(1), llm, testRegistry())
	o.Progress().Reset(1)

	res := o.runAgent(context.Background(), 0, "sub")
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Contains(t, res.Response, "boom")
	assert.Zero(t, res.Elapsed)

	status := o.Progress().Snapshot()[0]
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Reason, "boom")
}

func TestRunAgent_TimeoutOutcome(t *testing.T) {
	llm := model.GenerateFunc(func(ctx context.Context, _ model.Request) (*model.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	cfg := testConfig(1)
	cfg.Orchestrator.AgentTimeoutSeconds = 1

	o := New(cfg, llm, testRegistry())
	o.Progress().Reset(1)

	res := o.runAgent(context.Background(), 0, "sub")
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Equal(t, time.Second, res.Elapsed)
	assert.Equal(t, "timed out after 1s", res.Response)

	status := o.Progress().Snapshot()[0]
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "timed out after 1s", status.Reason)
}

func TestDecompose_UsesPlannerReply(t *testing.T) {
	llm := model.NewScriptedModel(model.TextTurn(`["one","two","three"]`))

	o := New(testConfig(3), llm, testRegistry())
	subtasks := o.decompose(context.Background(), "task", 3)
	assert.Equal(t, []string{"one", "two", "three"}, subtasks)

	// The planner must never see the completion signal.
	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	for _, def := range reqs[0].Tools {
		assert.NotEqual(t, tool.CompleteToolName, def.Name)
	}
}

func TestDecompose_FallsBackOnModelError(t *testing.T) {
	llm := model.NewScriptedModel(model.ErrorTurn(errors.New("down")))

	o := New(testConfig(3), llm, testRegistry())
	got := o.decompose(context.Background(), "my task", 3)
	assert.Equal(t, fallbackSubTasks("my task", 3), got)
}

func TestDecompose_FallsBackOnCountMismatch(t *testing.T) {
	llm := model.NewScriptedModel(model.TextTurn(`["only one"]`))

	o := New(testConfig(3), llm, testRegistry())
	got := o.decompose(context.Background(), "my task", 3)
	assert.Equal(t, fallbackSubTasks("my task", 3), got)
}
