// Package modelio is the generation-capability layer for the tutoring
// orchestrator. It defines provider-agnostic conversation types (messages
// built from tagged content blocks), the Invoker interface the orchestrator
// and dispatcher call through, a gollm-backed implementation, and best-effort
// recovery of structured JSON from raw model text.
//
// The package treats the hosted model as a black box: given a system prompt,
// a transcript, and optional tool specs, it returns either plain text or a
// turn containing tool-use blocks with a stop reason. Everything above this
// package works in those terms only.
package modelio
