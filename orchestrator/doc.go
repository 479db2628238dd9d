// Package orchestrator implements the tutoring agent's tool-use loop.
//
// One user chat message drives one run of the loop: the primary agent is
// invoked with the session transcript, curriculum context, and tool specs;
// tool-use turns are resolved through the Dispatcher (specialist model calls
// or local curriculum navigation) and folded back into the conversation as a
// single batched tool-result turn; the loop repeats until the agent signals
// ordinary completion or the iteration budget runs out, in which case the
// last available text is returned as a degraded but non-fatal result.
//
// Recoverable failures (malformed specialist output, unknown tool names,
// missing sessions referenced by a tool) are represented as structured result
// objects and folded into the conversation. Only upstream invocation or
// persistence failures abort a turn, and nothing is retried.
package orchestrator
