// Package orchestrator composes several agents in parallel to answer one user
// request from multiple angles: a planner agent decomposes the task into
// sub-tasks, worker agents run them concurrently while a shared progress
// tracker reports per-agent status, and the successful responses are combined
// by consensus synthesis into a single final answer.
//
// Partial failure is the normal case, not the exception: every dispatched
// sub-task produces exactly one result (success, error or timeout), one slow
// agent never blocks the others beyond its own timeout, and only the
// all-agents-failed case surfaces as a fixed user-visible message.
package orchestrator
