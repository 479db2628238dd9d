package modelio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmInvoker implements Invoker on top of a gollm.LLM instance. It
// translates between the orchestrator's turn types and gollm's prompt API,
// including recovery of tool-use blocks the provider embeds in response text.
type GollmInvoker struct {
	provider string
	model    string
	llm      gollm.LLM
}

// GollmOption configures a GollmInvoker.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	apiKey      string
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithAPIKey sets the API key. If empty, gollm reads it from environment
// variables.
func WithAPIKey(key string) GollmOption {
	return func(c *gollmConfig) {
		c.apiKey = key
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GollmOption {
	return func(c *gollmConfig) {
		c.temperature = t
	}
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) {
		c.extraOpts = append(c.extraOpts, opts...)
	}
}

// NewGollmInvoker creates a GollmInvoker for the given provider and model.
func NewGollmInvoker(provider, model string, opts ...GollmOption) (*GollmInvoker, error) {
	cfg := &gollmConfig{temperature: 0.7}
	for _, opt := range opts {
		opt(cfg)
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(DefaultSpecialistMaxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // upstream failures are surfaced, never retried
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmInvoker{provider: provider, model: model, llm: llm}, nil
}

// NewGollmInvokerFromLLM wraps an existing gollm.LLM instance.
func NewGollmInvokerFromLLM(provider string, llm gollm.LLM) *GollmInvoker {
	return &GollmInvoker{provider: provider, llm: llm}
}

// InvokeSpecialist runs a single-turn call with a fixed role prompt.
func (g *GollmInvoker) InvokeSpecialist(ctx context.Context, systemPrompt, userText string, maxTokens int) (SpecialistReply, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultSpecialistMaxTokens
	}

	prompt := gollm.NewPrompt(userText,
		gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral),
		gollm.WithMaxLength(maxTokens),
	)

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return SpecialistReply{}, classifyError(g.provider, err)
	}

	blocks, uses := parseTurn(text)
	if len(uses) > 0 {
		return SpecialistReply{Raw: &Response{
			StopReason: StopToolUse,
			Message:    Message{Role: RoleAssistant, Content: blocks},
		}}, nil
	}
	return SpecialistReply{Text: text}, nil
}

// InvokeOrchestrator runs the primary agent against the full transcript with
// tools available.
func (g *GollmInvoker) InvokeOrchestrator(ctx context.Context, systemPrompt string, messages []Message, tools []ToolSpec) (*Response, error) {
	promptOpts := []gollm.PromptOption{
		gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral),
		gollm.WithMaxLength(DefaultOrchestratorMaxTokens),
	}

	if len(tools) > 0 {
		gtools := make([]gollm.Tool, 0, len(tools))
		for _, t := range tools {
			gtools = append(gtools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			})
		}
		promptOpts = append(promptOpts, gollm.WithTools(gtools), gollm.WithToolChoice("auto"))
	}

	prompt := gollm.NewPrompt(flattenTranscript(messages), promptOpts...)

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, classifyError(g.provider, err)
	}

	blocks, uses := parseTurn(text)
	stop := StopEndTurn
	if len(uses) > 0 {
		stop = StopToolUse
	}
	return &Response{
		StopReason: stop,
		Message:    Message{Role: RoleAssistant, Content: blocks},
	}, nil
}

// flattenTranscript renders the alternating-role transcript as a single
// prompt for gollm, which takes one user text per call.
func flattenTranscript(messages []Message) string {
	var parts []string
	for _, msg := range messages {
		for _, block := range msg.Content {
			switch block.Kind {
			case BlockText:
				if block.Text == "" {
					continue
				}
				if msg.Role == RoleAssistant {
					parts = append(parts, "[Assistant]: "+block.Text)
				} else {
					parts = append(parts, block.Text)
				}
			case BlockToolUse:
				if block.ToolUse != nil {
					parts = append(parts, fmt.Sprintf("[Tool Call %s id=%s]: %s",
						block.ToolUse.Name, block.ToolUse.ID, string(block.ToolUse.Input)))
				}
			case BlockToolResult:
				if block.ToolResult != nil {
					parts = append(parts, fmt.Sprintf("[Tool Result id=%s]: %s",
						block.ToolResult.ToolUseID, string(block.ToolResult.Content)))
				}
			}
		}
	}
	joined := strings.Join(parts, "\n")
	if joined == "" {
		joined = "Hello"
	}
	return joined
}

// parseTurn splits generated text into content blocks, recovering tool calls
// the provider embedded as JSON in the response body.
func parseTurn(text string) ([]ContentBlock, []ToolUse) {
	start := strings.Index(text, `{"tool_calls"`)
	if start == -1 {
		start = strings.Index(text, `[{"name"`)
	}
	if start == -1 {
		return []ContentBlock{TextBlock(text)}, nil
	}

	var rawCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
		Input     json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal([]byte(text[start:]), &rawCalls); err != nil {
		return []ContentBlock{TextBlock(text)}, nil
	}

	var blocks []ContentBlock
	if leading := strings.TrimSpace(text[:start]); leading != "" {
		blocks = append(blocks, TextBlock(leading))
	}

	var uses []ToolUse
	for _, rc := range rawCalls {
		input := rc.Arguments
		if len(input) == 0 {
			input = rc.Input
		}
		if len(input) == 0 {
			input = json.RawMessage(`{}`)
		}
		use := ToolUse{
			ID:    "toolu_" + uuid.New().String()[:8],
			Name:  rc.Name,
			Input: input,
		}
		uses = append(uses, use)
		blocks = append(blocks, ToolUseBlock(use.ID, use.Name, use.Input))
	}
	return blocks, uses
}
