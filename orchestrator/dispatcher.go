package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/martinemde/mentorloop/modelio"
	"github.com/martinemde/mentorloop/session"
)

// rawContentLimit caps the curriculum text handed to the parsing specialist.
const rawContentLimit = 30000

// curriculumParseMaxTokens gives the parsing specialist room for large graphs.
const curriculumParseMaxTokens = 16384

// Dispatcher routes a named tool call to the correct specialist behavior: a
// model invocation with a fixed role prompt, or a local graph-navigation
// computation. Known failure modes never surface as errors; they are
// returned as structured result objects so the loop can always fold a result
// back into the conversation. Only upstream invocation or store failures
// return a non-nil error.
type Dispatcher struct {
	invoker modelio.Invoker
	store   session.Store
	prompts map[string]string
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher with the default role prompts.
func NewDispatcher(invoker modelio.Invoker, store session.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		invoker: invoker,
		store:   store,
		prompts: RolePrompts(),
		logger:  logger,
	}
}

// SetPrompts overrides the role-prompt binding. Intended for hosts that load
// prompt text from configuration.
func (d *Dispatcher) SetPrompts(prompts map[string]string) {
	d.prompts = prompts
}

// Dispatch routes one tool call and normalizes the result to a structured
// object.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, toolInput json.RawMessage) (map[string]interface{}, error) {
	if toolName == ToolNextCurriculumNode {
		return d.nextCurriculumNode(ctx, toolInput)
	}

	systemPrompt, ok := d.prompts[toolName]
	if !ok {
		return map[string]interface{}{"error": "Unknown tool: " + toolName}, nil
	}

	userText := string(toolInput)
	if userText == "" {
		userText = "{}"
	}

	reply, err := d.invoker.InvokeSpecialist(ctx, systemPrompt, userText, modelio.DefaultSpecialistMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("invoke specialist for %s: %w", toolName, err)
	}

	// A structured reply means the specialist itself emitted tool-use
	// blocks; pass the raw turn through unchanged for the loop to interpret.
	if reply.Structured() {
		d.logger.Info("dispatcher: structured specialist reply", "tool", toolName)
		return map[string]interface{}{
			"content_blocks": reply.Raw.Message.Content,
			"stop_reason":    string(reply.Raw.StopReason),
		}, nil
	}

	result, err := modelio.ExtractJSON(reply.Text)
	if err != nil {
		// The specialist did not comply with the output contract; degrade
		// to a plain-text wrapper rather than failing the dispatch.
		var malformed *modelio.MalformedOutputError
		if errors.As(err, &malformed) {
			d.logger.Warn("dispatcher: non-JSON specialist reply", "tool", toolName)
			return map[string]interface{}{"content": reply.Text}, nil
		}
		return nil, err
	}
	return result, nil
}

// nextCurriculumNode bypasses model invocation entirely: it walks the
// session's curriculum for the first uncompleted node whose prerequisites
// are all completed. Nodes a cycle or dangling reference keeps permanently
// blocked are simply never returned.
func (d *Dispatcher) nextCurriculumNode(ctx context.Context, toolInput json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		SessionID string `json:"session_id"`
	}
	_ = json.Unmarshal(toolInput, &input)

	sess, err := d.store.Get(ctx, input.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return map[string]interface{}{"error": "Session not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", input.SessionID, err)
	}

	node := sess.Curriculum.NextAvailable(sess.CompletedNodes)
	if node == nil {
		return map[string]interface{}{
			"message":   "All curriculum nodes completed!",
			"completed": true,
		}, nil
	}
	return nodeToMap(node)
}

func nodeToMap(node interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encode curriculum node: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode curriculum node: %w", err)
	}
	return m, nil
}

// ParseCurriculum runs the curriculum-architect specialist over raw text and
// returns the structured curriculum object. Parse failures degrade to an
// empty node list with a parse_error marker; only upstream invocation
// failures return an error.
func (d *Dispatcher) ParseCurriculum(ctx context.Context, rawContent, subjectHint string) (map[string]interface{}, error) {
	if len(rawContent) > rawContentLimit {
		rawContent = rawContent[:rawContentLimit]
	}

	payload, err := json.Marshal(map[string]string{
		"raw_content":  rawContent,
		"subject_hint": subjectHint,
	})
	if err != nil {
		return nil, fmt.Errorf("encode parse input: %w", err)
	}

	reply, err := d.invoker.InvokeSpecialist(ctx, d.prompts[ToolParseCurriculum], string(payload), curriculumParseMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("invoke curriculum architect: %w", err)
	}

	text := reply.Text
	if reply.Structured() {
		text = reply.Raw.Text()
	}

	result, extractErr := modelio.ExtractJSON(text)
	if extractErr != nil {
		d.logger.Error("dispatcher: could not structure curriculum", "error", extractErr)
		result = map[string]interface{}{
			"nodes":       []interface{}{},
			"parse_error": "Could not structure curriculum",
		}
	}
	if _, ok := result["subject"]; !ok {
		result["subject"] = subjectHint
	}
	return result, nil
}
