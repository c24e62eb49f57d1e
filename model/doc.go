// Package model defines the provider-agnostic abstractions for interacting
// with language models inside multimind.
//
// Core goals:
//   - Normalize the conversation shape (Message, Role) across vendors
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight scripting for tests (ScriptedModel, GenerateFunc)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agent loop, orchestrator) remain decoupled from
// vendor SDKs. Generation is a single request/response exchange; streaming is
// deliberately out of scope.
package model
