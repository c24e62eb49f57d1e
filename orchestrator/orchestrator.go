package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/multimind/agent"
	"github.com/hupe1980/multimind/config"
	"github.com/hupe1980/multimind/internal/util"
	"github.com/hupe1980/multimind/logging"
	"github.com/hupe1980/multimind/model"
	"github.com/hupe1980/multimind/tool"
)

// AllFailedMessage is returned when no dispatched agent produced a usable
// response. No synthesis is attempted in that case.
const AllFailedMessage = "All agents failed to complete their tasks."

// Outcome tags how a single agent's run settled.
type Outcome string

// Outcome values.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

// AgentResult is the immutable record produced when one agent's run settles.
// Exactly one result exists per dispatched sub-task; failures are
// materialized as error or timeout outcomes, never as a missing entry.
type AgentResult struct {
	Index    int
	Outcome  Outcome
	Response string
	Elapsed  time.Duration
}

// Options configures an Orchestrator.
type Options struct {
	Logger logging.Logger
}

// Orchestrator decomposes a user task into sub-tasks, runs one agent per
// sub-task concurrently and aggregates the successful responses into a
// single answer. It holds only immutable configuration plus the shared
// progress tracker and is safe for sequential reuse; runs must not overlap
// because they share the tracker.
type Orchestrator struct {
	cfg      *config.Config
	llm      model.Model
	tools    *tool.Registry
	progress *Progress
	logger   logging.Logger
}

// New creates an Orchestrator. tools is the full registry including the
// completion signal; role-specific subsets for planning and synthesis are
// derived internally.
func New(cfg *config.Config, llm model.Model, tools *tool.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		cfg:      cfg,
		llm:      llm,
		tools:    tools,
		progress: NewProgress(),
		logger:   opts.Logger,
	}
}

// Progress exposes the shared tracker for display layers. Observers read
// snapshots; only the orchestrator's agents write.
func (o *Orchestrator) Progress() *Progress { return o.progress }

// Orchestrate answers a user task by parallel decomposition. Sub-agent
// failures never surface as an error; every failure mode short of a canceled
// context degrades to a string answer. The error return covers only a
// context that is already dead on entry.
func (o *Orchestrator) Orchestrate(ctx context.Context, task string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("orchestration aborted: %w", err)
	}

	runID := uuid.NewString()[:8]
	n := o.cfg.Orchestrator.ParallelAgents

	o.logger.Info("orchestrate.start", "run_id", runID, "agents", n)
	o.progress.Reset(n)

	subtasks := o.decompose(ctx, task, n)
	results := o.dispatch(ctx, subtasks)

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	answer := o.aggregate(ctx, results)
	o.logger.Info("orchestrate.done", "run_id", runID)
	return answer, nil
}

// decompose asks a planner agent to split the task into exactly n sub-tasks.
// The planner runs without the completion-signal tool so the planning call
// cannot terminate itself prematurely. Any failure, a parse error or a wrong
// count falls back to the deterministic template set.
func (o *Orchestrator) decompose(ctx context.Context, task string, n int) []string {
	prompt, err := util.RenderTemplate(o.cfg.Orchestrator.DecompositionPrompt, struct {
		Task      string
		NumAgents int
	}{Task: task, NumAgents: n})
	if err != nil {
		o.logger.Warn("orchestrate.decompose.template_failed", "error", err.Error())
		return fallbackSubTasks(task, n)
	}

	planner := agent.New(o.llm, func(a *agent.Options) {
		a.SystemPrompt = o.cfg.Agent.SystemPrompt
		a.MaxIterations = o.cfg.Agent.MaxIterations
		a.Tools = o.tools.Without(tool.CompleteToolName)
		a.Logger = o.logger
	})

	reply, err := planner.Run(ctx, prompt)
	if err != nil {
		o.logger.Warn("orchestrate.decompose.failed", "error", err.Error())
		return fallbackSubTasks(task, n)
	}

	subtasks, err := parseSubTasks(reply)
	if err != nil {
		o.logger.Warn("orchestrate.decompose.parse_failed", "error", err.Error())
		return fallbackSubTasks(task, n)
	}
	if len(subtasks) != n {
		o.logger.Warn("orchestrate.decompose.count_mismatch", "want", n, "got", len(subtasks))
		return fallbackSubTasks(task, n)
	}
	return subtasks
}

// dispatch starts one agent per sub-task, waits for every run to settle and
// returns one result per index in arbitrary order. One slow or failing agent
// never blocks collection of the others beyond its own timeout.
func (o *Orchestrator) dispatch(ctx context.Context, subtasks []string) []AgentResult {
	var wg sync.WaitGroup
	resultCh := make(chan AgentResult, len(subtasks))

	for i, subtask := range subtasks {
		wg.Add(1)
		go func(index int, st string) {
			defer wg.Done()
			resultCh <- o.runAgent(ctx, index, st)
		}(i, subtask)
	}

	wg.Wait()
	close(resultCh)

	results := make([]AgentResult, 0, len(subtasks))
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}

// runAgent executes one sub-task through the tool-use loop, racing it
// against the configured per-agent timeout. On timeout the result's elapsed
// time is the configured timeout value and the outcome is OutcomeTimeout; on
// error the elapsed time is zero and the response carries the error text.
func (o *Orchestrator) runAgent(ctx context.Context, index int, subtask string) AgentResult {
	o.progress.Set(index, Initializing())

	worker := agent.New(o.llm, func(a *agent.Options) {
		a.SystemPrompt = o.cfg.Agent.SystemPrompt
		a.MaxIterations = o.cfg.Agent.MaxIterations
		a.Tools = o.tools
		a.Logger = o.logger
	})

	timeout := o.cfg.AgentTimeout()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type settled struct {
		text string
		err  error
	}
	done := make(chan settled, 1)

	o.progress.Set(index, Processing())
	start := time.Now()
	go func() {
		text, err := worker.Run(runCtx, subtask)
		done <- settled{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			o.logger.Warn("orchestrate.agent.failed", "index", index, "error", res.err.Error())
			o.progress.Set(index, Failed(res.err.Error()))
			return AgentResult{Index: index, Outcome: OutcomeError, Response: res.err.Error()}
		}
		o.progress.Set(index, Completed())
		return AgentResult{Index: index, Outcome: OutcomeSuccess, Response: res.text, Elapsed: time.Since(start)}
	case <-runCtx.Done():
		reason := fmt.Sprintf("timed out after %s", timeout)
		o.logger.Warn("orchestrate.agent.timeout", "index", index, "timeout", timeout.String())
		o.progress.Set(index, Failed(reason))
		return AgentResult{Index: index, Outcome: OutcomeTimeout, Response: reason, Elapsed: timeout}
	}
}

// aggregate combines index-sorted results into the final answer: the fixed
// all-failed message when nothing succeeded, the single response verbatim
// when exactly one agent succeeded, consensus synthesis otherwise.
func (o *Orchestrator) aggregate(ctx context.Context, results []AgentResult) string {
	var successes []AgentResult
	for _, res := range results {
		if res.Outcome == OutcomeSuccess {
			successes = append(successes, res)
		}
	}

	switch len(successes) {
	case 0:
		o.logger.Warn("orchestrate.aggregate.all_failed", "results", len(results))
		return AllFailedMessage
	case 1:
		// Synthesis adds no value for a single input.
		return successes[0].Response
	}

	answer, err := o.synthesize(ctx, successes)
	if err != nil {
		// Synthesis failure is never fatal; fall back to labeled concatenation.
		o.logger.Error("orchestrate.synthesis.failed", "error", err.Error())
		return concatResponses(successes)
	}
	return answer
}

// synthesize runs the consensus synthesis call: a fresh agent with all tools
// removed (synthesis must answer directly, never resume tool use) fed the
// successful responses under labeled headings.
func (o *Orchestrator) synthesize(ctx context.Context, successes []AgentResult) (string, error) {
	var responses strings.Builder
	for i, res := range successes {
		fmt.Fprintf(&responses, "=== AGENT %d RESPONSE ===\n%s\n\n", i+1, res.Response)
	}

	prompt, err := util.RenderTemplate(o.cfg.Orchestrator.SynthesisPrompt, struct {
		NumResponses int
		Responses    string
	}{NumResponses: len(successes), Responses: responses.String()})
	if err != nil {
		return "", fmt.Errorf("render synthesis prompt: %w", err)
	}

	synthesizer := agent.New(o.llm, func(a *agent.Options) {
		a.SystemPrompt = o.cfg.Agent.SystemPrompt
		a.MaxIterations = o.cfg.Agent.MaxIterations
		a.Tools = tool.NewRegistry()
		a.Logger = o.logger
	})

	return synthesizer.Run(ctx, prompt)
}

// concatResponses is the synthesis fallback: every successful response under
// its own labeled separator, in ascending index order.
func concatResponses(successes []AgentResult) string {
	blocks := make([]string, len(successes))
	for i, res := range successes {
		blocks[i] = fmt.Sprintf("=== Agent %d Response ===\n%s", i+1, res.Response)
	}
	return strings.Join(blocks, "\n\n")
}
