package modelio

import "context"

// Default token budgets, matching the hosted configuration the orchestrator
// was tuned against.
const (
	DefaultSpecialistMaxTokens   = 8192
	DefaultOrchestratorMaxTokens = 4096
)

// Invoker is the generation capability. Implementations are expected to be
// safe for use from a single request goroutine; the orchestrator performs no
// retries and no cancellation beyond the passed context.
type Invoker interface {
	// InvokeSpecialist runs a single-turn call with a fixed role prompt.
	// The reply is plain text unless the model emitted tool-use blocks, in
	// which case the raw turn is passed through for the caller to interpret.
	InvokeSpecialist(ctx context.Context, systemPrompt, userText string, maxTokens int) (SpecialistReply, error)

	// InvokeOrchestrator runs the primary agent against the full transcript
	// with tools available and returns the raw turn.
	InvokeOrchestrator(ctx context.Context, systemPrompt string, messages []Message, tools []ToolSpec) (*Response, error)
}
