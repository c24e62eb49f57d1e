// Package agent implements the bounded tool-use conversation loop: a single
// agent sends the growing conversation plus its tool schemas to a language
// model, dispatches any requested tool calls, and repeats until the model
// invokes the completion signal or the iteration budget runs out.
//
// The loop accumulates every non-empty assistant message and returns the full
// transcript, not just the final turn. Intermediate reasoning is part of the
// contract; the orchestrator's synthesis step consumes it.
package agent
